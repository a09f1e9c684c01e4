package sqlinline

const QSelectIntegrationToken = `--sql 3c1f7e0a-5b62-4d8e-9a41-2f6c0b9d7e15
select token
from integration_tokens
where provider = $1::text;
`

// QUpsertIntegrationToken args: provider, token, properties (jsonb, may be null).
const QUpsertIntegrationToken = `--sql 91d4a2b6-0e7f-4c38-b5a9-6e2d8f1c4a70
insert into integration_tokens (id, provider, token, properties, created_at, updated_at)
values (gen_random_uuid(), $1::text, $2::text, coalesce($3::jsonb, '{}'::jsonb), now(), now())
on conflict (provider) do update
set token = excluded.token,
    properties = excluded.properties,
    updated_at = now();
`
