package mastodon

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nhle/fedinotify/internal/model"
)

// ListNotifications fetches the notification collection for the signed-in
// account in server order (newest first).
func (c *Client) ListNotifications(ctx context.Context) ([]model.Notification, error) {
	var wire []Notification
	if err := c.Get(ctx, "/notifications", &wire); err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}

	out := make([]model.Notification, 0, len(wire))
	for _, n := range wire {
		out = append(out, toModelNotification(n))
	}
	return out, nil
}

// DismissNotification removes a single notification on the server.
func (c *Client) DismissNotification(ctx context.Context, id string) error {
	if err := c.Post(ctx, "/notifications/dismiss", dismissRequest{ID: id}, nil); err != nil {
		return fmt.Errorf("dismissing notification %s: %w", id, err)
	}
	return nil
}

// ClearNotifications removes every notification on the server.
func (c *Client) ClearNotifications(ctx context.Context) error {
	if err := c.Post(ctx, "/notifications/clear", nil, nil); err != nil {
		return fmt.Errorf("clearing notifications: %w", err)
	}
	return nil
}

// FollowAccount follows the account with the given ID.
func (c *Client) FollowAccount(ctx context.Context, accountID string) (*Relationship, error) {
	var rel Relationship
	path := "/accounts/" + url.PathEscape(accountID) + "/follow"
	if err := c.Post(ctx, path, nil, &rel); err != nil {
		return nil, fmt.Errorf("following account %s: %w", accountID, err)
	}
	return &rel, nil
}

// toModelNotification converts the wire representation into the model
// used by the UI.
func toModelNotification(n Notification) model.Notification {
	out := model.Notification{
		ID:        n.ID,
		Type:      model.NotificationType(n.Type),
		CreatedAt: n.CreatedAt,
		Account: model.Account{
			ID:           n.Account.ID,
			Username:     n.Account.Username,
			Acct:         n.Account.Acct,
			DisplayName:  n.Account.DisplayName,
			Avatar:       n.Account.Avatar,
			AvatarStatic: n.Account.AvatarStatic,
		},
	}

	if n.Status != nil {
		st := &model.Status{
			ID:        n.Status.ID,
			Content:   n.Status.Content,
			URL:       n.Status.URL,
			CreatedAt: n.Status.CreatedAt,
		}
		if n.Status.Poll != nil {
			st.Poll = &model.Poll{
				ID:      n.Status.Poll.ID,
				Expired: n.Status.Poll.Expired,
			}
		}
		out.Status = st
	}

	return out
}
