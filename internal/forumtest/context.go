package forumtest

import "context"

type bodyKey struct{}
type emailKey struct{}

func withBody(ctx context.Context, body map[string]any) context.Context {
	return context.WithValue(ctx, bodyKey{}, body)
}

func bodyFrom(ctx context.Context) map[string]any {
	body, _ := ctx.Value(bodyKey{}).(map[string]any)
	return body
}

func withEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, emailKey{}, email)
}

func emailFrom(ctx context.Context) string {
	email, _ := ctx.Value(emailKey{}).(string)
	return email
}
