package sqlinline

const QListPendingUploads = `--sql 9e6fe62b-b676-4eb6-96eb-dfe7d5158b1e
select id::text, mux_upload_id, mux_status
from classes
where mux_status in ('waiting', 'processing')
  and mux_upload_id is not null
order by updated_at asc
limit $1::int;
`

// QApplyUploadStatus is forward-only: the row is touched only while it still
// tracks the same upload and its status is one of the allowed predecessors.
const QApplyUploadStatus = `--sql f7b43a10-7075-439e-9be7-38bac8c274c2
update classes set
  mux_status = $3::text,
  mux_asset_id = nullif($5::text, ''),
  mux_playback_id = nullif($6::text, ''),
  video_type = case when $3::text = 'ready' then 'mux' else video_type end,
  video_url = case when $3::text = 'ready' then nullif($7::text, '') else video_url end,
  thumbnail_url = case when $3::text = 'ready' then nullif($8::text, '') else thumbnail_url end,
  updated_at = now()
where id = $1::uuid
  and mux_upload_id = $2::text
  and mux_status = any($4::text[]);
`
