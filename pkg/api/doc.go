// Package api exposes the firm's decision surface over HTTP. The Discord
// command handler in front of the bot calls these endpoints; the server
// itself never talks to the chat platform.
//
// Every mutating request carries an Actor (who is asking, which roles they
// hold, whether they own the guild); read endpoints pass the same fields as
// query parameters. Handlers build a permission context and delegate to the
// domain services, so no business rule lives here.
//
// Error shape: permission denials are 403, missing records 404, conflicts
// 409, and business rule violations 422 with the full validation result in
// the body so callers can render counts and bypass prompts.
package api
