// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// リクエストID付与、アクセスログ、Prometheusメトリクス、パニックリカバリ、
// CORS設定など、ドメインに依存しないミドルウェアを含む。
// アクセストークンの検証はユーザーの永続化と結びつくため internal/auth に置く。
package middleware
