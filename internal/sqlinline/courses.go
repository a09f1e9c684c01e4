package sqlinline

const QInsertCourse = `--sql 6ca78baf-7f37-4551-bf1f-f203e096ab89
insert into courses (id, teacher_id, title, description, difficulty, language, published, created_at, updated_at)
values (gen_random_uuid(), $1::uuid, $2::text, $3::text, $4::text, $5::text, $6::boolean, now(), now())
returning id, created_at, updated_at;
`

const QUpdateCourse = `--sql 6780177f-b424-4084-a815-57283a91e557
update courses set
  title = $3::text,
  description = $4::text,
  difficulty = $5::text,
  language = $6::text,
  published = $7::boolean,
  updated_at = now()
where id = $1::uuid and teacher_id = $2::uuid
returning created_at, updated_at;
`

const QSelectCourse = `--sql 42d05a45-1277-4847-8e7d-7eba886eccc9
select id::text, teacher_id::text, title, description, difficulty, language, published, created_at, updated_at
from courses
where id = $2::uuid and teacher_id = $1::uuid
limit 1;
`

const QListCoursesByTeacher = `--sql f24359f7-4f4f-488c-bcae-f78aadacedf0
select id::text, teacher_id::text, title, description, difficulty, language, published, created_at, updated_at
from courses
where teacher_id = $1::uuid
order by created_at desc
limit $2::int offset $3::int;
`

const QDeleteCourse = `--sql 2ba35509-5e53-4fe6-8346-33d72d882ffb
delete from courses
where id = $2::uuid and teacher_id = $1::uuid;
`

const QListCourseClasses = `--sql 0fc00e7f-50e8-498b-88c5-5ed46078515a
select
  c.id::text,
  c.teacher_id::text,
  c.kind,
  c.title,
  c.description,
  c.duration_minutes,
  c.difficulty,
  c.language,
  c.category_id::text,
  c.video_path,
  c.video_url,
  c.video_type,
  c.mux_upload_id,
  c.mux_asset_id,
  c.mux_playback_id,
  c.mux_status,
  c.thumbnail_url,
  c.created_at,
  c.updated_at
from course_classes cc
join classes c on c.id = cc.class_id
where cc.course_id = $1::uuid
order by cc.position asc;
`

// QReplaceCourseClasses rewrites the ordered list in one statement. The
// delete and the upsert touch disjoint rows.
const QReplaceCourseClasses = `--sql d413c4dc-d909-4777-812c-4ddac04ff356
with input as (
    select t.class_id::uuid as class_id, (t.ord - 1)::int as position
    from unnest($2::text[]) with ordinality as t(class_id, ord)
),
removed as (
    delete from course_classes cc
    where cc.course_id = $1::uuid
      and not exists (select 1 from input i where i.class_id = cc.class_id)
)
insert into course_classes (course_id, class_id, position)
select $1::uuid, i.class_id, i.position
from input i
on conflict (course_id, class_id) do update set
    position = excluded.position;
`
