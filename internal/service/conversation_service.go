package service

import (
	"context"

	"gorm.io/gorm"

	"github.com/pulsechat/pulse/internal/entity"
	"github.com/pulsechat/pulse/internal/repository"
	"github.com/pulsechat/pulse/pkg/errcode"
	"github.com/pulsechat/pulse/pkg/idgen"
)

// ConversationService implements §4.2.
type ConversationService struct {
	repos *repository.Repositories
}

func NewConversationService(repos *repository.Repositories) *ConversationService {
	return &ConversationService{repos: repos}
}

// CreateRequest mirrors POST /conversations' body.
type CreateRequest struct {
	UserIds []string
	IsGroup bool
	Name    string
}

// Create enforces direct-vs-group cardinality and, for direct
// conversations, idempotent lookup by strict member-set equality (I5).
func (s *ConversationService) Create(ctx context.Context, actor string, req CreateRequest) (*entity.ConversationView, error) {
	for _, uid := range req.UserIds {
		u, err := s.repos.User.GetById(ctx, uid)
		if err != nil {
			return nil, errcode.ErrInternal.Wrap(err)
		}
		if u == nil {
			return nil, errcode.ErrInvalidParam.Wrap(errUnknownUser(uid))
		}
	}

	if !req.IsGroup {
		if len(req.UserIds) != 1 {
			return nil, errcode.ErrInvalidParam
		}
		other := req.UserIds[0]
		if other == actor {
			return nil, errcode.ErrInvalidParam
		}

		convId := entity.GenDirectConversationId(actor, other)
		conv := &entity.Conversation{Id: convId, IsGroup: false}
		members := []*entity.ConversationMember{
			{ConversationId: convId, UserId: actor, Role: entity.RoleMember},
			{ConversationId: convId, UserId: other, Role: entity.RoleMember},
		}
		err := s.repos.Transaction(ctx, func(tx *gorm.DB) error {
			return s.repos.Conversation.CreateWithMembers(tx, conv, members)
		})
		if err != nil {
			return nil, errcode.ErrInternal.Wrap(err)
		}
		return s.Get(ctx, convId, actor)
	}

	if len(req.UserIds) < 2 {
		return nil, errcode.ErrInvalidParam
	}
	if req.Name == "" {
		return nil, errcode.ErrInvalidParam
	}

	convId, err := idgen.NextID()
	if err != nil {
		return nil, errcode.ErrInternal.Wrap(err)
	}
	conv := &entity.Conversation{Id: convId, IsGroup: true, Name: req.Name}
	members := []*entity.ConversationMember{{ConversationId: convId, UserId: actor, Role: entity.RoleAdmin}}
	for _, uid := range req.UserIds {
		members = append(members, &entity.ConversationMember{ConversationId: convId, UserId: uid, Role: entity.RoleMember})
	}

	err = s.repos.Transaction(ctx, func(tx *gorm.DB) error {
		return s.repos.Conversation.CreateWithMembers(tx, conv, members)
	})
	if err != nil {
		return nil, errcode.ErrInternal.Wrap(err)
	}
	return s.Get(ctx, convId, actor)
}

// ListForUser returns the actor's conversations ordered by updatedAt desc,
// each with its last message attached.
func (s *ConversationService) ListForUser(ctx context.Context, actor string) ([]*entity.ConversationView, error) {
	convs, err := s.repos.Conversation.ListForUser(ctx, actor)
	if err != nil {
		return nil, errcode.ErrInternal.Wrap(err)
	}

	views := make([]*entity.ConversationView, 0, len(convs))
	for _, c := range convs {
		view, err := s.toView(ctx, c, true)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// Get returns the conversation with members and last message, distinguishing
// not-found from forbidden so callers can log appropriately.
func (s *ConversationService) Get(ctx context.Context, id, actor string) (*entity.ConversationView, error) {
	conv, err := s.repos.Conversation.GetById(ctx, id)
	if err != nil {
		return nil, errcode.ErrInternal.Wrap(err)
	}
	if conv == nil {
		return nil, errcode.ErrConversationNotFound
	}
	isMember, err := s.repos.Conversation.IsMember(ctx, id, actor)
	if err != nil {
		return nil, errcode.ErrInternal.Wrap(err)
	}
	if !isMember {
		return nil, errcode.ErrNotMember
	}
	return s.toView(ctx, conv, true)
}

// IsMember is the hot-path predicate used by the gateway and Media
// Authorization Service.
func (s *ConversationService) IsMember(ctx context.Context, conversationId, userId string) (bool, error) {
	return s.repos.Conversation.IsMember(ctx, conversationId, userId)
}

func (s *ConversationService) toView(ctx context.Context, c *entity.Conversation, withMembers bool) (*entity.ConversationView, error) {
	view := &entity.ConversationView{
		Id:        c.Id,
		IsGroup:   c.IsGroup,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}

	if withMembers {
		members, err := s.repos.Conversation.GetMembers(ctx, c.Id)
		if err != nil {
			return nil, errcode.ErrInternal.Wrap(err)
		}
		view.Members = members
	}

	last, err := s.repos.Message.GetLastForConversation(ctx, c.Id)
	if err != nil {
		return nil, errcode.ErrInternal.Wrap(err)
	}
	if last != nil {
		sender, err := s.repos.User.GetById(ctx, last.SenderId)
		if err != nil {
			return nil, errcode.ErrInternal.Wrap(err)
		}
		var senderInfo *entity.UserInfo
		if sender != nil {
			senderInfo = sender.ToUserInfo()
		}
		view.LastMessage = last.ToMessageView(senderInfo)
	}

	return view, nil
}

type unknownUserErr struct{ userId string }

func (e *unknownUserErr) Error() string { return "unknown user: " + e.userId }

func errUnknownUser(userId string) error { return &unknownUserErr{userId: userId} }
