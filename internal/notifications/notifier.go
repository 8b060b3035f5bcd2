package notifications

import (
	"context"
	"fmt"
	"strings"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/observability"
)

// Notifier composes and sends the application's email alerts.
type Notifier struct {
	mailer      Mailer
	subscribers []string
	baseURL     string
}

// NewNotifier creates a Notifier. subscribers is the broadcast list for
// new-post alerts; comment alerts always go to the post author.
func NewNotifier(mailer Mailer, subscribers []string, baseURL string) *Notifier {
	return &Notifier{
		mailer:      mailer,
		subscribers: subscribers,
		baseURL:     strings.TrimRight(baseURL, "/"),
	}
}

// NewPostAlert emails every subscriber about a freshly published post. The
// error is returned to the caller: a failed broadcast fails the publish
// request.
func (n *Notifier) NewPostAlert(ctx context.Context, post *models.Post) error {
	if n == nil || n.mailer == nil || len(n.subscribers) == 0 {
		return nil
	}

	ctx, span := observability.TraceMailDelivery(ctx, "new_post", len(n.subscribers))
	defer span.End()

	msg := Message{
		To:      n.subscribers,
		Subject: fmt.Sprintf("New Blog Post: '%s'", post.Title),
		Body: fmt.Sprintf(
			"%s just published a new post.\n\nTitle: %s\n\nRead it here: %s%s\n",
			post.Author.Username, post.Title, n.baseURL, post.DetailURL(),
		),
	}

	if err := n.mailer.Send(ctx, msg); err != nil {
		span.RecordError(err)
		middleware.MailSends.WithLabelValues("new_post", "error").Inc()
		return models.NewMailDeliveryError(err)
	}
	middleware.MailSends.WithLabelValues("new_post", "ok").Inc()
	return nil
}

// NewCommentAlert emails the post author that a comment is awaiting
// moderation. Delivery failures are logged and swallowed; a comment must
// never be lost to a flaky mail server.
func (n *Notifier) NewCommentAlert(ctx context.Context, post *models.Post, comment *models.Comment) {
	if n == nil || n.mailer == nil || post.Author.Email == "" {
		return
	}

	ctx, span := observability.TraceMailDelivery(ctx, "new_comment", 1)
	defer span.End()

	msg := Message{
		To:      []string{post.Author.Email},
		Subject: fmt.Sprintf("New comment on '%s'", post.Title),
		Body: fmt.Sprintf(
			"%s commented on your post '%s':\n\n%s\n\nReview it here: %s%s\n",
			comment.User.Username, post.Title, comment.Text, n.baseURL, post.DetailURL(),
		),
	}

	if err := n.mailer.Send(ctx, msg); err != nil {
		span.RecordError(err)
		middleware.MailSends.WithLabelValues("new_comment", "error").Inc()
		middleware.Logger.ErrorContext(ctx, "comment alert delivery failed",
			"post_slug", post.Slug,
			"comment_id", comment.ID,
			"error", err.Error(),
		)
		return
	}
	middleware.MailSends.WithLabelValues("new_comment", "ok").Inc()
}
