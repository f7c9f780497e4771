package sqlinline

const QCreateBuildsTable = `--sql 3f1f93e9-3170-451b-a250-6dd0f1c0603b
create table if not exists theme_builds (
  id uuid primary key,
  branch text not null,
  platforms text[] not null default '{}',
  status text not null,
  output_dir text not null,
  result jsonb,
  error text not null default '',
  started_at timestamptz not null,
  finished_at timestamptz
);
`

const QUpsertBuild = `--sql efc4f313-99ac-4cc5-9c22-8edbb27e6540
insert into theme_builds(id, branch, platforms, status, output_dir, result, error, started_at, finished_at)
values ($1::uuid, $2, $3, $4, $5, $6::jsonb, $7, $8, $9)
on conflict (id) do update set
  status = excluded.status,
  result = excluded.result,
  error = excluded.error,
  finished_at = excluded.finished_at;
`

const QSelectBuildByID = `--sql f371620f-b1b4-4199-aef5-38546b28740f
select id, branch, platforms, status, output_dir, result, error, started_at, finished_at
from theme_builds
where id = $1::uuid
limit 1;
`

const QListBuilds = `--sql e8f1fb68-cab9-45df-946f-939bf5d2cb3e
select id, branch, platforms, status, output_dir, result, error, started_at, finished_at
from theme_builds
where ($1::text = '' or branch = $1)
order by started_at desc
limit $2::int;
`
