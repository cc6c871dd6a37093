package services

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emre/teamforge/internal/app/models/dto"
	"github.com/emre/teamforge/internal/pkg/apperrors"
	"github.com/emre/teamforge/internal/pkg/realtime"
)

func newChatService(store *memoryStore, pub *fakePublisher) ChatService {
	return NewChatService(store.chatView(), store.usersView(), pub, zerolog.Nop())
}

func TestSendCommunityMessage(t *testing.T) {
	store := newMemoryStore()
	pub := &fakePublisher{}
	svc := newChatService(store, pub)
	sender := store.addUser("Ada Lovelace")

	resp, err := svc.SendMessage(asUser(sender.ID), nil, &dto.SendMessageRequest{Body: "  hello everyone  "})
	require.NoError(t, err)

	assert.Nil(t, resp.TeamID)
	assert.Equal(t, "hello everyone", resp.Body, "body is trimmed")
	assert.Equal(t, "Ada Lovelace", resp.SenderName)
	assert.Equal(t, []int64{sender.ID}, resp.ReadBy, "sender reads their own message on insert")

	assert.Contains(t, pub.typesOn(realtime.ChannelCommunity), realtime.EventMessageCreated)
}

func TestSendEmptyMessage(t *testing.T) {
	store := newMemoryStore()
	svc := newChatService(store, &fakePublisher{})
	sender := store.addUser("Ada Lovelace")

	_, err := svc.SendMessage(asUser(sender.ID), nil, &dto.SendMessageRequest{Body: "   "})
	assert.Error(t, err)
}

func TestTeamScopeRequiresMembership(t *testing.T) {
	store := newMemoryStore()
	pub := &fakePublisher{}
	svc := newChatService(store, pub)
	teamSvc := newTeamService(store, &fakePublisher{})

	leader := store.addUser("Ada Lovelace")
	outsider := store.addUser("Grace Hopper")
	team, err := teamSvc.CreateTeam(asUser(leader.ID), &dto.CreateTeamRequest{Name: "Rocket", ProjectIdea: "a carpooling app"})
	require.NoError(t, err)

	// A member can post
	resp, err := svc.SendMessage(asUser(leader.ID), &team.ID, &dto.SendMessageRequest{Body: "standup at 9"})
	require.NoError(t, err)
	require.NotNil(t, resp.TeamID)
	assert.Equal(t, team.ID, *resp.TeamID)
	assert.Contains(t, pub.typesOn(realtime.TeamChannel(team.ID)), realtime.EventMessageCreated)

	// An outsider cannot post or read
	_, err = svc.SendMessage(asUser(outsider.ID), &team.ID, &dto.SendMessageRequest{Body: "hi"})
	assert.ErrorIs(t, err, apperrors.ErrNotTeamMember)
	_, err = svc.ListMessages(asUser(outsider.ID), &team.ID, &dto.MessageListQuery{Limit: 50})
	assert.ErrorIs(t, err, apperrors.ErrNotTeamMember)
}

func TestListMessagesChronological(t *testing.T) {
	store := newMemoryStore()
	svc := newChatService(store, &fakePublisher{})
	sender := store.addUser("Ada Lovelace")

	for _, body := range []string{"first", "second", "third"} {
		_, err := svc.SendMessage(asUser(sender.ID), nil, &dto.SendMessageRequest{Body: body})
		require.NoError(t, err)
	}

	msgs, err := svc.ListMessages(asUser(sender.ID), nil, &dto.MessageListQuery{Limit: 50})
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "first", msgs[0].Body)
	assert.Equal(t, "third", msgs[2].Body)

	// Pagination walks backwards but pages stay chronological
	page, err := svc.ListMessages(asUser(sender.ID), nil, &dto.MessageListQuery{Limit: 1, Before: msgs[2].ID})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "second", page[0].Body)
}

func TestDeleteMessageSenderOnly(t *testing.T) {
	store := newMemoryStore()
	svc := newChatService(store, &fakePublisher{})
	sender := store.addUser("Ada Lovelace")
	other := store.addUser("Grace Hopper")

	msg, err := svc.SendMessage(asUser(sender.ID), nil, &dto.SendMessageRequest{Body: "oops"})
	require.NoError(t, err)

	err = svc.DeleteMessage(asUser(other.ID), msg.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotSender)

	err = svc.DeleteMessage(asUser(sender.ID), msg.ID)
	require.NoError(t, err)

	err = svc.DeleteMessage(asUser(sender.ID), msg.ID)
	assert.ErrorIs(t, err, apperrors.ErrMessageNotFound)
}

func TestMarkRead(t *testing.T) {
	store := newMemoryStore()
	pub := &fakePublisher{}
	svc := newChatService(store, pub)
	sender := store.addUser("Ada Lovelace")
	reader := store.addUser("Grace Hopper")

	msg, err := svc.SendMessage(asUser(sender.ID), nil, &dto.SendMessageRequest{Body: "read me"})
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(asUser(reader.ID), msg.ID))
	// Re-reading is a no-op
	require.NoError(t, svc.MarkRead(asUser(reader.ID), msg.ID))

	msgs, err := svc.ListMessages(asUser(sender.ID), nil, &dto.MessageListQuery{Limit: 50})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.ElementsMatch(t, []int64{sender.ID, reader.ID}, msgs[0].ReadBy)

	err = svc.MarkRead(asUser(reader.ID), 9999)
	assert.ErrorIs(t, err, apperrors.ErrMessageNotFound)
}
