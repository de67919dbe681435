package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"habitQuestAPI/internal/notification"
)

// PushProvider delivers a notification to registered devices. The FCM
// adapter in internal/notification implements it; tests can plug a mock.
type PushProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error
}

type NotificationService struct {
	db   *pgxpool.Pool
	push PushProvider
}

func NewNotificationService(db *pgxpool.Pool) *NotificationService {
	return &NotificationService{db: db}
}

// SetPushProvider wires the push channel. Without one, notifications are
// still persisted and readable in-app.
func (s *NotificationService) SetPushProvider(p PushProvider) {
	s.push = p
}

// Notify implements the progression service's Notifier: persists the
// notification and pushes it to the user's devices best-effort.
func (s *NotificationService) Notify(ctx context.Context, req *notification.CreateNotificationRequest) error {
	title, body := renderNotification(req)

	notif := &notification.Notification{
		ID:        uuid.New(),
		UserID:    req.UserID,
		Type:      req.Type,
		Title:     title,
		Body:      body,
		Data:      req.Data,
		CreatedAt: time.Now(),
	}

	query := `
	INSERT INTO notifications (id, user_id, type, title, body, data, read, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.Exec(ctx, query,
		notif.ID, notif.UserID, notif.Type, notif.Title, notif.Body, notif.Data, notif.Read, notif.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	if s.push != nil {
		tokens, err := s.deviceTokens(ctx, req.UserID)
		if err != nil {
			log.Printf("Notification: failed to load device tokens for %s: %v", req.UserID, err)
			return nil
		}
		if err := s.push.SendPush(ctx, tokens, title, body, req.Data); err != nil {
			log.Printf("Notification: push failed for %s: %v", req.UserID, err)
		}
	}
	return nil
}

func renderNotification(req *notification.CreateNotificationRequest) (string, string) {
	switch req.Type {
	case notification.TypeLevelUp:
		return "Level up!", fmt.Sprintf("You reached level %v. Keep it going!", req.Data["level"])
	case notification.TypeStreakMilestone:
		return "Streak milestone!", fmt.Sprintf("%v days in a row on %v!", req.Data["streak"], req.Data["habit"])
	default:
		return "HabitQuest", "You have a new notification"
	}
}

// List returns the user's most recent notifications.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit int) ([]*notification.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `
	SELECT id, user_id, type, title, body, data, read, created_at
	FROM notifications
	WHERE user_id = $1
	ORDER BY created_at DESC
	LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifs := []*notification.Notification{}
	for rows.Next() {
		n := &notification.Notification{}
		err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &n.Data, &n.Read, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifs = append(notifs, n)
	}
	return notifs, rows.Err()
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = false`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("notification not found")
	}
	return nil
}

// RegisterDevice upserts a push token for the user.
func (s *NotificationService) RegisterDevice(ctx context.Context, userID uuid.UUID, token, platform string) error {
	query := `
	INSERT INTO device_tokens (id, user_id, token, platform, created_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (token) DO UPDATE SET user_id = $2, platform = $4
	`
	_, err := s.db.Exec(ctx, query, uuid.New(), userID, token, platform, time.Now())
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

func (s *NotificationService) deviceTokens(ctx context.Context, userID uuid.UUID) ([]notification.DeviceToken, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, user_id, token, platform, created_at FROM device_tokens WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tokens := []notification.DeviceToken{}
	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.ID, &t.UserID, &t.Token, &t.Platform, &t.CreatedAt); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}
