package sqlinline

const QEnsureTeacher = `--sql 8f126653-808a-475e-8dc8-525d39dc077c
insert into teachers (id, email, created_at, updated_at)
values ($1::uuid, coalesce($2::text, ''), now(), now())
on conflict (id) do update set
    email = case when excluded.email = '' then teachers.email else excluded.email end,
    updated_at = now();
`
