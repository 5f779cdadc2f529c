//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"context"
	"fmt"
	"log/slog"
	"rosterhub/auth"
	"rosterhub/contract"
	"rosterhub/domain/chat"
	"rosterhub/domain/event"
	"rosterhub/domain/search"
	"rosterhub/errors"
	"rosterhub/moderation"
	"rosterhub/repositories"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IChatService interface {
	CreateChat(ctx context.Context, cmd chat.CreateChatCommand) (chat.Chat, error)
	MarkChatAsSeen(ctx context.Context, cmd chat.MarkSeenCommand) (bool, error)
	GetAllChats(ctx context.Context, cmd chat.GetAllChatsCommand) ([]chat.Chat, error)
	GetChatByUser(ctx context.Context, cmd chat.GetChatByUserCommand) ([]chat.Chat, error)
	GetChatsBetweenUsers(ctx context.Context, cmd chat.GetChatsBetweenUsersCommand) ([]chat.Chat, error)
	SearchChats(ctx context.Context, cmd chat.SearchChatsCommand) ([]chat.Chat, error)
}

// ChatService owns the two chat mutations and the history queries.
// Every mutation persists first, then publishes on the bus.
type ChatService struct {
	log              *slog.Logger
	chats            repositories.IChatRepository
	profiles         repositories.IProfileRepository
	index            repositories.IChatIndex
	bus              contract.IBus
	moderator        *moderation.Moderator
	maxContentLength int
	now              func() time.Time
}

func NewChatService(
	log *slog.Logger,
	chats repositories.IChatRepository,
	profiles repositories.IProfileRepository,
	index repositories.IChatIndex,
	bus contract.IBus,
	moderator *moderation.Moderator,
	maxContentLength int,
) *ChatService {
	return &ChatService{
		log:              log,
		chats:            chats,
		profiles:         profiles,
		index:            index,
		bus:              bus,
		moderator:        moderator,
		maxContentLength: maxContentLength,
		now:              time.Now,
	}
}

// CreateChat validates, moderates and stores a new unseen message, then
// publishes exactly one chatCreated event. Nothing is stored or published on
// validation failure. A publish failure does not fail the call.
func (s *ChatService) CreateChat(ctx context.Context, cmd chat.CreateChatCommand) (chat.Chat, error) {
	if err := auth.Validator().Struct(cmd); err != nil {
		return chat.Chat{}, fmt.Errorf("%w: %v", errors.ErrInvalidInput, err)
	}
	content := strings.TrimSpace(cmd.Content)
	if content == "" {
		return chat.Chat{}, errors.ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > s.maxContentLength {
		return chat.Chat{}, fmt.Errorf("%w: max %d characters", errors.ErrContentTooLong, s.maxContentLength)
	}
	if cmd.From == cmd.To {
		return chat.Chat{}, fmt.Errorf("%w: sender and recipient must differ", errors.ErrInvalidInput)
	}

	profiles, err := s.requireMembers(cmd.OrganizationID, cmd.From, cmd.To)
	if err != nil {
		return chat.Chat{}, err
	}

	moderated := s.moderator.Moderate(content)
	if len(moderated.CensoredWords) > 0 {
		s.log.Info("Chat content censored",
			"organization_id", cmd.OrganizationID,
			"from", cmd.From,
			"words", len(moderated.CensoredWords),
			"lang", moderated.Language)
	}

	message := chat.Message{
		ID:             uuid.New(),
		OrganizationID: cmd.OrganizationID,
		From:           cmd.From,
		To:             cmd.To,
		Content:        moderated.Content,
		Seen:           false,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.chats.Store(message); err != nil {
		return chat.Chat{}, fmt.Errorf("failed to store chat: %w", err)
	}

	created := toChat(message, profiles)
	if err := s.bus.Publish(ctx, event.NewChatCreated(cmd.OrganizationID, created)); err != nil {
		s.log.Error("Failed to publish chatCreated", "chat_id", created.ID, "error", err)
	}
	return created, nil
}

// MarkChatAsSeen flips every unseen message from the peer to the viewer in one
// transaction. One chatSeen receipt is published only when something flipped,
// so a repeated call is a silent no-op. It always answers true on success.
func (s *ChatService) MarkChatAsSeen(ctx context.Context, cmd chat.MarkSeenCommand) (bool, error) {
	if err := auth.Validator().Struct(cmd); err != nil {
		return false, fmt.Errorf("%w: %v", errors.ErrInvalidInput, err)
	}
	if err := s.requireMember(cmd.OrganizationID, cmd.ViewerID); err != nil {
		return false, err
	}

	flipped, err := s.chats.MarkSeen(cmd.OrganizationID, cmd.PeerID, cmd.ViewerID)
	if err != nil {
		return false, fmt.Errorf("failed to mark chats as seen: %w", err)
	}
	if len(flipped) == 0 {
		return true, nil
	}

	profiles, err := s.profiles.GetProfiles([]string{cmd.ViewerID, cmd.PeerID})
	if err != nil {
		s.log.Warn("Failed to resolve receipt profiles", "error", err)
	}
	latest := flipped[len(flipped)-1]
	receipt := chat.Chat{
		ID:        latest.ID,
		From:      summaryOf(cmd.ViewerID, profiles),
		To:        summaryOf(cmd.PeerID, profiles),
		Content:   latest.Content,
		Seen:      true,
		CreatedAt: latest.CreatedAt,
	}
	if err := s.bus.Publish(ctx, event.NewChatSeen(cmd.OrganizationID, receipt)); err != nil {
		s.log.Error("Failed to publish chatSeen", "viewer", cmd.ViewerID, "peer", cmd.PeerID, "error", err)
	}
	s.log.Debug("Chats marked as seen", "viewer", cmd.ViewerID, "peer", cmd.PeerID, "count", len(flipped))
	return true, nil
}

func (s *ChatService) GetAllChats(_ context.Context, cmd chat.GetAllChatsCommand) ([]chat.Chat, error) {
	if err := s.authorizeQuery(cmd, cmd.OrganizationID, cmd.ViewerID); err != nil {
		return nil, err
	}
	messages, err := s.chats.GetByOrganization(cmd.OrganizationID)
	if err != nil {
		return nil, err
	}
	return s.toChats(messages)
}

func (s *ChatService) GetChatByUser(_ context.Context, cmd chat.GetChatByUserCommand) ([]chat.Chat, error) {
	if err := s.authorizeQuery(cmd, cmd.OrganizationID, cmd.ViewerID); err != nil {
		return nil, err
	}
	messages, err := s.chats.GetByUser(cmd.OrganizationID, cmd.UserID)
	if err != nil {
		return nil, err
	}
	return s.toChats(messages)
}

func (s *ChatService) GetChatsBetweenUsers(_ context.Context, cmd chat.GetChatsBetweenUsersCommand) ([]chat.Chat, error) {
	if err := s.authorizeQuery(cmd, cmd.OrganizationID, cmd.ViewerID); err != nil {
		return nil, err
	}
	messages, err := s.chats.GetBetween(cmd.OrganizationID, cmd.UserA, cmd.UserB)
	if err != nil {
		return nil, err
	}
	return s.toChats(messages)
}

// SearchChats returns matches most recent first.
func (s *ChatService) SearchChats(ctx context.Context, cmd chat.SearchChatsCommand) ([]chat.Chat, error) {
	if err := s.authorizeQuery(cmd, cmd.OrganizationID, cmd.ViewerID); err != nil {
		return nil, err
	}
	query := search.NewSearchQuery(cmd.OrganizationID, cmd.Input)
	if query.IsEmpty() {
		return nil, fmt.Errorf("%w: empty search", errors.ErrInvalidInput)
	}
	ids, err := s.index.Search(ctx, *query)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	messages, err := s.chats.GetByIDs(ids)
	if err != nil {
		return nil, err
	}
	rank := make(map[uuid.UUID]int, len(ids))
	for i, id := range ids {
		rank[id] = i
	}
	messages = lo.Filter(messages, func(m chat.Message, _ int) bool {
		return m.OrganizationID == cmd.OrganizationID
	})
	chats, err := s.toChats(messages)
	if err != nil {
		return nil, err
	}
	sortByRank(chats, rank)
	return chats, nil
}

func (s *ChatService) authorizeQuery(cmd any, organizationID, viewerID string) error {
	if err := auth.Validator().Struct(cmd); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidInput, err)
	}
	return s.requireMember(organizationID, viewerID)
}

func (s *ChatService) requireMember(organizationID, profileID string) error {
	member, err := s.profiles.IsMember(organizationID, profileID)
	if err != nil {
		return err
	}
	if !member {
		return fmt.Errorf("%w: %s", errors.ErrNotMember, profileID)
	}
	return nil
}

// requireMembers checks that every profile exists and belongs to the organization.
func (s *ChatService) requireMembers(organizationID string, ids ...string) (map[string]repositories.Profile, error) {
	profiles, err := s.profiles.GetProfiles(ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := profiles[id]; !ok {
			return nil, fmt.Errorf("%w: %s", errors.ErrProfileNotFound, id)
		}
		if err := s.requireMember(organizationID, id); err != nil {
			return nil, err
		}
	}
	return profiles, nil
}

func (s *ChatService) toChats(messages []chat.Message) ([]chat.Chat, error) {
	ids := lo.Uniq(lo.FlatMap(messages, func(m chat.Message, _ int) []string {
		return []string{m.From, m.To}
	}))
	profiles, err := s.profiles.GetProfiles(ids)
	if err != nil {
		return nil, err
	}
	return lo.Map(messages, func(m chat.Message, _ int) chat.Chat {
		return toChat(m, profiles)
	}), nil
}

func toChat(m chat.Message, profiles map[string]repositories.Profile) chat.Chat {
	return chat.Chat{
		ID:        m.ID,
		From:      summaryOf(m.From, profiles),
		To:        summaryOf(m.To, profiles),
		Content:   m.Content,
		Seen:      m.Seen,
		CreatedAt: m.CreatedAt,
	}
}

// summaryOf keeps the id even when the profile could not be resolved.
func summaryOf(id string, profiles map[string]repositories.Profile) chat.ProfileSummary {
	return chat.ProfileSummary{ID: id, Name: profiles[id].Name}
}

func sortByRank(chats []chat.Chat, rank map[uuid.UUID]int) {
	sort.SliceStable(chats, func(i, j int) bool { return rank[chats[i].ID] < rank[chats[j].ID] })
}
