package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/koinonia-lab/backend/internal/domain/engagement"
	"github.com/koinonia-lab/backend/internal/domain/notification"
	"github.com/koinonia-lab/backend/internal/entity"
	"github.com/koinonia-lab/backend/internal/model"
	"github.com/koinonia-lab/backend/internal/repository"
	"github.com/koinonia-lab/backend/pkg/dateutil"
	"github.com/koinonia-lab/backend/pkg/errorx"
	"github.com/koinonia-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

const (
	maxMessageLength = 4000
	previewLength    = 80
)

type ChatDomain interface {
	SendMessage(context.Context, *model.SendMessageRequest) (*model.SendMessageResponse, error)
}

type chatDomain struct {
	cellRepo        repository.CellRepository
	chatMessageRepo repository.ChatMessageRepository
	userRepo        repository.UserRepository
	eventLogger     EventLogger
	notifier        notification.Notifier
	hub             *engagement.Hub
	clock           dateutil.Clock
}

func NewChatDomain(
	cellRepo repository.CellRepository,
	chatMessageRepo repository.ChatMessageRepository,
	userRepo repository.UserRepository,
	eventLogger EventLogger,
	notifier notification.Notifier,
	hub *engagement.Hub,
	clock dateutil.Clock,
) *chatDomain {
	return &chatDomain{
		cellRepo:        cellRepo,
		chatMessageRepo: chatMessageRepo,
		userRepo:        userRepo,
		eventLogger:     eventLogger,
		notifier:        notifier,
		hub:             hub,
		clock:           clock,
	}
}

func (d *chatDomain) SendMessage(
	ctx context.Context, req *model.SendMessageRequest,
) (*model.SendMessageResponse, error) {
	content := strings.TrimSpace(sanitize(req.Content))
	if content == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty message")
	}

	if utf8.RuneCountInString(content) > maxMessageLength {
		return nil, errorx.New(errorx.BadRequest, "Message is too long")
	}

	channel, err := d.cellRepo.GetChannelByID(ctx, req.ChannelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found channel")
		}

		xcontext.Logger(ctx).Errorf("Cannot get channel: %v", err)
		return nil, errorx.Unknown
	}

	requestUserID := xcontext.RequestUserID(ctx)
	if err := checkCellMember(ctx, d.cellRepo, channel.CellID, requestUserID); err != nil {
		return nil, err
	}

	now := d.clock.Now()
	msg := &entity.ChannelMessage{
		ID:        uuid.NewString(),
		ChannelID: channel.ID,
		UserID:    requestUserID,
		Content:   content,
		CreatedAt: now,
	}

	if err := d.chatMessageRepo.Create(ctx, msg); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create message: %v", err)
		return nil, errorx.Unknown
	}

	// The author has obviously read the channel.
	if err := d.chatMessageRepo.MarkRead(ctx, channel.ID, requestUserID, now); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot mark channel as read: %v", err)
	}

	accrue(ctx, d.eventLogger, requestUserID, entity.CellMessage)

	if d.hub != nil {
		d.hub.MessageCreated(channel.CellID, channel.ID, requestUserID)
	}

	d.notifyMembers(ctx, channel, requestUserID, content)

	return &model.SendMessageResponse{ID: msg.ID}, nil
}

func (d *chatDomain) notifyMembers(ctx context.Context, channel *entity.Channel, authorID, content string) {
	if d.notifier == nil {
		return
	}

	memberIDs, err := d.cellRepo.GetMemberIDs(ctx, channel.CellID)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot get members of cell %s: %v", channel.CellID, err)
		return
	}

	recipients := []string{}
	for _, id := range memberIDs {
		if id != authorID {
			recipients = append(recipients, id)
		}
	}

	authorName := "Someone"
	if author, err := d.userRepo.GetByID(ctx, authorID); err == nil {
		authorName = author.Name
	}

	title := fmt.Sprintf("%s in #%s", authorName, channel.Name)
	body := preview(content)
	link := fmt.Sprintf("/cells/%s/channels/%s", channel.CellID, channel.ID)
	fanout := xcontext.Configs(ctx).Notification.FanoutSize

	notification.NotifyAll(ctx, d.notifier, recipients, fanout, func(userID string) notification.Message {
		return notification.Message{UserID: userID, Title: title, Body: body, LinkPath: link}
	})
}

func preview(s string) string {
	if utf8.RuneCountInString(s) <= previewLength {
		return s
	}

	return string([]rune(s)[:previewLength]) + "..."
}
