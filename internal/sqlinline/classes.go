package sqlinline

const QInsertClass = `--sql 0ad2fe04-212f-4085-8bc4-0cb18f3c3715
insert into classes (
  id,
  teacher_id,
  kind,
  title,
  description,
  duration_minutes,
  difficulty,
  language,
  category_id,
  video_path,
  video_url,
  video_type,
  mux_upload_id,
  mux_asset_id,
  mux_playback_id,
  mux_status,
  thumbnail_url,
  created_at,
  updated_at
) values (
  gen_random_uuid(),
  $1::uuid,
  $2::text,
  $3::text,
  $4::text,
  $5::int,
  $6::text,
  $7::text,
  $8::uuid,
  $9::text,
  $10::text,
  $11::text,
  $12::text,
  $13::text,
  $14::text,
  $15::text,
  $16::text,
  now(),
  now()
)
returning id, created_at, updated_at;
`

const QUpdateClass = `--sql c7b3b79a-71d3-4d7b-8273-effa0465e1f0
update classes set
  kind = $3::text,
  title = $4::text,
  description = $5::text,
  duration_minutes = $6::int,
  difficulty = $7::text,
  language = $8::text,
  category_id = $9::uuid,
  video_path = $10::text,
  video_url = $11::text,
  video_type = $12::text,
  mux_upload_id = $13::text,
  mux_asset_id = $14::text,
  mux_playback_id = $15::text,
  mux_status = $16::text,
  thumbnail_url = $17::text,
  updated_at = now()
where id = $1::uuid and teacher_id = $2::uuid
returning created_at, updated_at;
`

const QSelectClass = `--sql 0372e44f-7edc-4387-aea1-e6bc60846df2
select
  id::text,
  teacher_id::text,
  kind,
  title,
  description,
  duration_minutes,
  difficulty,
  language,
  category_id::text,
  video_path,
  video_url,
  video_type,
  mux_upload_id,
  mux_asset_id,
  mux_playback_id,
  mux_status,
  thumbnail_url,
  created_at,
  updated_at
from classes
where id = $2::uuid and teacher_id = $1::uuid
limit 1;
`

const QListClassesByTeacher = `--sql d21b5e67-b138-4d82-b960-fedbc1373995
select
  id::text,
  teacher_id::text,
  kind,
  title,
  description,
  duration_minutes,
  difficulty,
  language,
  category_id::text,
  video_path,
  video_url,
  video_type,
  mux_upload_id,
  mux_asset_id,
  mux_playback_id,
  mux_status,
  thumbnail_url,
  created_at,
  updated_at
from classes
where teacher_id = $1::uuid
order by created_at desc
limit $2::int offset $3::int;
`

const QDeleteClass = `--sql 975d2e6e-7cc7-4776-b1dd-980d0ef0e7b6
delete from classes
where id = $2::uuid and teacher_id = $1::uuid;
`

const QClearClassVideo = `--sql 00452869-dccf-492b-897a-d9b21f374a6a
update classes set
  video_path = null,
  video_url = null,
  video_type = null,
  mux_upload_id = null,
  mux_asset_id = null,
  mux_playback_id = null,
  mux_status = null,
  thumbnail_url = null,
  updated_at = now()
where id = $2::uuid and teacher_id = $1::uuid;
`

const QCountOwnedClasses = `--sql c45404f6-1890-4012-83f5-f2da219bdd7c
select count(*)
from classes
where teacher_id = $1::uuid
  and id::text = any($2::text[]);
`
