package service

import (
	"strings"

	"context"

	"gorm.io/gorm"

	"github.com/pulsechat/pulse/internal/entity"
	"github.com/pulsechat/pulse/internal/repository"
	"github.com/pulsechat/pulse/pkg/errcode"
	"github.com/pulsechat/pulse/pkg/idgen"
)

// MessagePublisher is implemented by the gateway's bus wrapper; the
// Message Service only knows it can publish a reference tuple, not how
// fan-out happens — mirrors the teacher's MessagePusher interface
// separation between service and gateway.
type MessagePublisher interface {
	PublishMessage(ctx context.Context, messageId, conversationId, senderId string) error
}

// MessageService implements §4.3.
type MessageService struct {
	repos     *repository.Repositories
	publisher MessagePublisher
}

func NewMessageService(repos *repository.Repositories) *MessageService {
	return &MessageService{repos: repos}
}

// SetPublisher wires the bus publisher after construction, the way the
// teacher's cmd/server/main.go calls msgService.SetPusher(wsServer) once
// the gateway exists.
func (s *MessageService) SetPublisher(p MessagePublisher) { s.publisher = p }

// SendRequest mirrors POST /messages and the send_message socket event.
type SendRequest struct {
	ConversationId string
	Type           entity.MsgType
	Content        *string
	MediaPath      *string
	MediaMeta      *string
}

// Send implements §4.3: it loads the member set and validates membership and
// type/payload invariants, then in one transaction inserts the message,
// inserts N status rows (sender pre-delivered) and advances
// conversation.updatedAt; any failure of those writes rolls back all of them
// (§7). The member load and validation run before the transaction opens.
// After commit it publishes a reference tuple to the Message Bus.
func (s *MessageService) Send(ctx context.Context, actor string, req SendRequest) (*entity.MessageView, error) {
	memberIds, err := s.repos.Conversation.GetMemberUserIds(ctx, req.ConversationId)
	if err != nil {
		return nil, errcode.ErrInternal.Wrap(err)
	}
	if len(memberIds) == 0 {
		exists, err := s.repos.Conversation.GetById(ctx, req.ConversationId)
		if err != nil {
			return nil, errcode.ErrInternal.Wrap(err)
		}
		if exists == nil {
			return nil, errcode.ErrConversationNotFound
		}
	}
	if !contains(memberIds, actor) {
		return nil, errcode.ErrNotMember
	}

	if err := validatePayload(req); err != nil {
		return nil, err
	}

	msgId, err := idgen.NextID()
	if err != nil {
		return nil, errcode.ErrInternal.Wrap(err)
	}
	now := entity.NowUnixMilli()

	msg := &entity.Message{
		Id:             msgId,
		ConversationId: req.ConversationId,
		SenderId:       actor,
		Content:        req.Content,
		Type:           req.Type,
		MediaPath:      req.MediaPath,
		MediaMeta:      req.MediaMeta,
		CreatedAt:      now,
	}

	statuses := make([]*entity.MessageStatus, 0, len(memberIds))
	for _, uid := range memberIds {
		row := &entity.MessageStatus{MessageId: msgId, UserId: uid}
		if uid == actor {
			row.DeliveredAt = &now // I4: sender's own row pre-delivered.
		}
		statuses = append(statuses, row)
	}

	err = s.repos.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.repos.Message.Create(tx, msg); err != nil {
			return err
		}
		if err := s.repos.MessageStatus.CreateAll(tx, statuses); err != nil {
			return err
		}
		return s.repos.Conversation.Touch(tx, req.ConversationId, now)
	})
	if err != nil {
		return nil, errcode.ErrInternal.Wrap(err)
	}

	sender, err := s.repos.User.GetById(ctx, actor)
	if err != nil {
		return nil, errcode.ErrInternal.Wrap(err)
	}
	var senderInfo *entity.UserInfo
	if sender != nil {
		senderInfo = sender.ToUserInfo()
	}
	view := msg.ToMessageView(senderInfo)

	if s.publisher != nil {
		if err := s.publisher.PublishMessage(ctx, msgId, req.ConversationId, actor); err != nil {
			// The bus is a notification channel, not a transport: a failed
			// publish never rolls back the already-committed message.
			return view, nil
		}
	}

	return view, nil
}

// ListPage implements listForConversation's cursor pagination (§4.3).
type ListPage struct {
	Messages   []*entity.MessageView
	NextCursor *int64
	HasMore    bool
}

func (s *MessageService) ListForConversation(ctx context.Context, actor, conversationId string, cursor *int64, limit int) (*ListPage, error) {
	isMember, err := s.repos.Conversation.IsMember(ctx, conversationId, actor)
	if err != nil {
		return nil, errcode.ErrInternal.Wrap(err)
	}
	if !isMember {
		exists, err := s.repos.Conversation.GetById(ctx, conversationId)
		if err != nil {
			return nil, errcode.ErrInternal.Wrap(err)
		}
		if exists == nil {
			return nil, errcode.ErrConversationNotFound
		}
		return nil, errcode.ErrNotMember
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}

	messages, err := s.repos.Message.ListBefore(ctx, conversationId, cursor, limit)
	if err != nil {
		return nil, errcode.ErrInternal.Wrap(err)
	}

	senderIds := make([]string, 0, len(messages))
	seen := map[string]bool{}
	for _, m := range messages {
		if !seen[m.SenderId] {
			seen[m.SenderId] = true
			senderIds = append(senderIds, m.SenderId)
		}
	}
	senders, err := s.repos.User.GetByIds(ctx, senderIds)
	if err != nil {
		return nil, errcode.ErrInternal.Wrap(err)
	}
	senderById := make(map[string]*entity.UserInfo, len(senders))
	for _, u := range senders {
		senderById[u.Id] = u.ToUserInfo()
	}

	views := make([]*entity.MessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, m.ToMessageView(senderById[m.SenderId]))
	}

	page := &ListPage{Messages: views, HasMore: len(messages) == limit}
	if len(messages) == limit {
		oldest := messages[len(messages)-1].CreatedAt
		page.NextCursor = &oldest
	}
	return page, nil
}

// GetSingle returns a message including its status rows (GET /messages/single/:messageId).
func (s *MessageService) GetSingle(ctx context.Context, actor, messageId string) (*entity.MessageView, error) {
	msg, err := s.repos.Message.GetById(ctx, messageId)
	if err != nil {
		return nil, errcode.ErrInternal.Wrap(err)
	}
	if msg == nil {
		return nil, errcode.ErrMessageNotFound
	}
	isMember, err := s.repos.Conversation.IsMember(ctx, msg.ConversationId, actor)
	if err != nil {
		return nil, errcode.ErrInternal.Wrap(err)
	}
	if !isMember {
		return nil, errcode.ErrNotMember
	}

	sender, err := s.repos.User.GetById(ctx, msg.SenderId)
	if err != nil {
		return nil, errcode.ErrInternal.Wrap(err)
	}
	var senderInfo *entity.UserInfo
	if sender != nil {
		senderInfo = sender.ToUserInfo()
	}
	view := msg.ToMessageView(senderInfo)

	statuses, err := s.repos.MessageStatus.GetForMessage(ctx, messageId)
	if err != nil {
		return nil, errcode.ErrInternal.Wrap(err)
	}
	view.Statuses = statuses
	return view, nil
}

// GetForBroadcast re-reads a message by id with no membership check: only
// the Bus consumer calls this, after the message's room membership was
// already enforced at publish time and at every room's join_conversation.
func (s *MessageService) GetForBroadcast(ctx context.Context, messageId string) (*entity.MessageView, error) {
	msg, err := s.repos.Message.GetById(ctx, messageId)
	if err != nil {
		return nil, errcode.ErrInternal.Wrap(err)
	}
	if msg == nil {
		return nil, errcode.ErrMessageNotFound
	}

	sender, err := s.repos.User.GetById(ctx, msg.SenderId)
	if err != nil {
		return nil, errcode.ErrInternal.Wrap(err)
	}
	var senderInfo *entity.UserInfo
	if sender != nil {
		senderInfo = sender.ToUserInfo()
	}
	return msg.ToMessageView(senderInfo), nil
}

// MarkDelivered implements the message_delivered event: sets deliveredAt
// only if null, for the actor's own row (monotonicity, I3).
func (s *MessageService) MarkDelivered(ctx context.Context, actor, conversationId, messageId string) error {
	isMember, err := s.repos.Conversation.IsMember(ctx, conversationId, actor)
	if err != nil {
		return errcode.ErrInternal.Wrap(err)
	}
	if !isMember {
		return errcode.ErrNotMember
	}
	_, err = s.repos.MessageStatus.SetDelivered(ctx, messageId, actor, entity.NowUnixMilli())
	if err != nil {
		return errcode.ErrInternal.Wrap(err)
	}
	return nil
}

// MarkRead implements the message_read event: a batch update in one
// transaction, stamping deliveredAt (where null) and readAt (where null)
// for the actor's own rows (I2).
func (s *MessageService) MarkRead(ctx context.Context, actor, conversationId string, messageIds []string) error {
	isMember, err := s.repos.Conversation.IsMember(ctx, conversationId, actor)
	if err != nil {
		return errcode.ErrInternal.Wrap(err)
	}
	if !isMember {
		return errcode.ErrNotMember
	}
	if len(messageIds) == 0 {
		return errcode.ErrInvalidParam
	}

	now := entity.NowUnixMilli()
	err = s.repos.Transaction(ctx, func(tx *gorm.DB) error {
		return s.repos.MessageStatus.SetReadBatch(tx, conversationId, messageIds, actor, now)
	})
	if err != nil {
		return errcode.ErrInternal.Wrap(err)
	}
	return nil
}

func validatePayload(req SendRequest) error {
	switch req.Type {
	case entity.MsgTypeText:
		if req.Content == nil || strings.TrimSpace(*req.Content) == "" {
			return errcode.ErrInvalidParam
		}
		if req.MediaPath != nil {
			return errcode.ErrInvalidParam
		}
	case entity.MsgTypeImage, entity.MsgTypeVideo:
		if req.MediaPath == nil || *req.MediaPath == "" {
			return errcode.ErrInvalidParam
		}
	default:
		return errcode.ErrInvalidParam
	}
	return nil
}

func contains(haystack []string, needle string) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}
	return false
}
