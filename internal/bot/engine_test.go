package bot

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gkhcrm/gkhcrm/internal/apiclient"
	"github.com/gkhcrm/gkhcrm/internal/bot/session"
	"github.com/gkhcrm/gkhcrm/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestEngine() (*Engine, *MockAPIClient, *session.Store) {
	client := new(MockAPIClient)
	store := session.NewStore()
	engine := NewEngine(client, store, "http://localhost:3000", zerolog.Nop())
	return engine, client, store
}

func testUser() *domain.User {
	return &domain.User{
		ID:    uuid.New(),
		Name:  "Иван",
		Email: "100500@telegram.ru",
		Role:  domain.RoleUser,
	}
}

func testTicket(title string) *domain.Ticket {
	return &domain.Ticket{
		ID:        uuid.New(),
		Title:     title,
		Status:    domain.StatusNew,
		Channel:   domain.ChannelTelegram,
		CreatedAt: time.Now(),
	}
}

func TestEngine_Register(t *testing.T) {
	engine, client, store := newTestEngine()
	ctx := context.Background()
	from := Identity{ID: 100500, Name: "Иван"}
	user := testUser()

	client.On("GetOrCreateUser", ctx, "100500", "Иван").Return(user, nil)

	t.Run("first contact creates session", func(t *testing.T) {
		replies := engine.HandleText(ctx, from, "/start")
		require.Len(t, replies, 1)
		assert.Contains(t, replies[0].Text, "Привет, Иван")
		assert.True(t, replies[0].MainMenu)

		sess, ok := store.Get(from.ID)
		require.True(t, ok)
		assert.Equal(t, user.ID.String(), sess.UserID)
		assert.Equal(t, session.Idle, sess.State)
	})

	t.Run("repeated registration yields the same user", func(t *testing.T) {
		engine.HandleText(ctx, from, "/start")

		sess, _ := store.Get(from.ID)
		assert.Equal(t, user.ID.String(), sess.UserID)
	})

	t.Run("registration failure is reported", func(t *testing.T) {
		failing := new(MockAPIClient)
		failing.On("GetOrCreateUser", ctx, "7", "Пользователь").
			Return(nil, &apiclient.APIError{Message: "db down"})
		e := NewEngine(failing, session.NewStore(), "http://localhost:3000", zerolog.Nop())

		replies := e.HandleText(ctx, Identity{ID: 7}, "/start")
		require.Len(t, replies, 1)
		assert.Contains(t, replies[0].Text, "Ошибка при регистрации")
		assert.Contains(t, replies[0].Text, "db down")
	})
}

func TestEngine_DialogueProgression(t *testing.T) {
	engine, client, store := newTestEngine()
	ctx := context.Background()
	from := Identity{ID: 42, Name: "Анна"}
	user := testUser()

	client.On("GetOrCreateUser", ctx, "42", "Анна").Return(user, nil)
	client.On("CreateTicket", ctx, apiclient.TicketInput{
		Title:       "Протекает кран",
		Description: "Кухня, второй этаж",
		UserID:      user.ID.String(),
		Channel:     domain.ChannelTelegram,
	}).Return(testTicket("Протекает кран"), nil)

	// /new moves to the title step
	replies := engine.HandleText(ctx, from, "/new")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "Шаг 1 из 2")

	sess, _ := store.Get(from.ID)
	assert.Equal(t, session.AwaitingTitle, sess.State)

	// title is recorded, dialogue advances
	replies = engine.HandleText(ctx, from, "Протекает кран")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "Шаг 2 из 2")

	sess, _ = store.Get(from.ID)
	assert.Equal(t, session.AwaitingDescription, sess.State)
	assert.Equal(t, "Протекает кран", sess.DraftTitle)

	// description completes the ticket and resets the dialogue
	replies = engine.HandleText(ctx, from, "Кухня, второй этаж")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "Заявка успешно создана")

	sess, _ = store.Get(from.ID)
	assert.Equal(t, session.Idle, sess.State)
	assert.Empty(t, sess.DraftTitle)
	assert.Equal(t, user.ID.String(), sess.UserID, "user reference survives the reset")

	client.AssertExpectations(t)
}

func TestEngine_Cancellation(t *testing.T) {
	ctx := context.Background()
	user := testUser()

	cancelForms := []string{"отмена", "Отмена", "ОТМЕНА"}
	for _, form := range cancelForms {
		t.Run(form, func(t *testing.T) {
			engine, client, store := newTestEngine()
			from := Identity{ID: 1, Name: "Анна"}
			client.On("GetOrCreateUser", ctx, "1", "Анна").Return(user, nil)

			engine.HandleText(ctx, from, "/new")
			engine.HandleText(ctx, from, "Заголовок")

			replies := engine.HandleText(ctx, from, form)
			require.Len(t, replies, 1)
			assert.Contains(t, replies[0].Text, "отменено")

			sess, _ := store.Get(from.ID)
			assert.Equal(t, session.Idle, sess.State)
			assert.Empty(t, sess.DraftTitle)
			assert.Equal(t, user.ID.String(), sess.UserID)

			client.AssertNotCalled(t, "CreateTicket", mock.Anything, mock.Anything)
		})
	}

	t.Run("отменить is not the cancel keyword", func(t *testing.T) {
		engine, client, store := newTestEngine()
		from := Identity{ID: 2, Name: "Анна"}
		client.On("GetOrCreateUser", ctx, "2", "Анна").Return(user, nil)

		engine.HandleText(ctx, from, "/new")
		engine.HandleText(ctx, from, "отменить")

		sess, _ := store.Get(from.ID)
		assert.Equal(t, session.AwaitingDescription, sess.State)
		assert.Equal(t, "отменить", sess.DraftTitle)
	})

	t.Run("cancel works at the title step too", func(t *testing.T) {
		engine, client, store := newTestEngine()
		from := Identity{ID: 3, Name: "Анна"}
		client.On("GetOrCreateUser", ctx, "3", "Анна").Return(user, nil)

		engine.HandleText(ctx, from, "/new")
		engine.HandleText(ctx, from, "отмена")

		sess, _ := store.Get(from.ID)
		assert.Equal(t, session.Idle, sess.State)
	})
}

func TestEngine_FailureDoesNotAdvanceState(t *testing.T) {
	engine, client, store := newTestEngine()
	ctx := context.Background()
	from := Identity{ID: 9, Name: "Пётр"}
	user := testUser()

	client.On("GetOrCreateUser", ctx, "9", "Пётр").Return(user, nil)

	input := apiclient.TicketInput{
		Title:       "Не работает лифт",
		Description: "Подъезд 2",
		UserID:      user.ID.String(),
		Channel:     domain.ChannelTelegram,
	}
	client.On("CreateTicket", ctx, input).
		Return(nil, &apiclient.APIError{Message: "service unavailable"}).Once()
	client.On("CreateTicket", ctx, input).
		Return(testTicket("Не работает лифт"), nil).Once()

	engine.HandleText(ctx, from, "/new")
	engine.HandleText(ctx, from, "Не работает лифт")

	// first submission fails: state and draft must survive
	replies := engine.HandleText(ctx, from, "Подъезд 2")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "Ошибка при создании заявки")
	assert.Contains(t, replies[0].Text, "service unavailable")

	sess, _ := store.Get(from.ID)
	assert.Equal(t, session.AwaitingDescription, sess.State)
	assert.Equal(t, "Не работает лифт", sess.DraftTitle)

	// retry with the same title succeeds
	replies = engine.HandleText(ctx, from, "Подъезд 2")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "успешно создана")

	sess, _ = store.Get(from.ID)
	assert.Equal(t, session.Idle, sess.State)

	client.AssertExpectations(t)
}

func TestEngine_MissingUserReference(t *testing.T) {
	engine, client, store := newTestEngine()
	ctx := context.Background()
	from := Identity{ID: 11}

	// a session that somehow lost its user reference mid-dialogue
	store.Set(from.ID, session.Session{State: session.AwaitingDescription, DraftTitle: "Кран"})

	replies := engine.HandleText(ctx, from, "описание")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "сессия не найдена")

	sess, _ := store.Get(from.ID)
	assert.Equal(t, session.AwaitingDescription, sess.State)

	client.AssertNotCalled(t, "CreateTicket", mock.Anything, mock.Anything)
}

func TestEngine_MenuLabelHijacksDialogue(t *testing.T) {
	engine, client, store := newTestEngine()
	ctx := context.Background()
	from := Identity{ID: 5, Name: "Ольга"}
	user := testUser()

	client.On("GetOrCreateUser", ctx, "5", "Ольга").Return(user, nil)

	engine.HandleText(ctx, from, "/new")
	engine.HandleText(ctx, from, "Заголовок")

	// an exact menu label is a command even while a description is awaited
	replies := engine.HandleText(ctx, from, ButtonNewTicket)
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "Шаг 1 из 2")

	sess, _ := store.Get(from.ID)
	assert.Equal(t, session.AwaitingTitle, sess.State)
	assert.Empty(t, sess.DraftTitle)

	client.AssertNotCalled(t, "CreateTicket", mock.Anything, mock.Anything)
}

func TestEngine_CommandMidDialogueKeepsState(t *testing.T) {
	engine, client, store := newTestEngine()
	ctx := context.Background()
	from := Identity{ID: 6, Name: "Ольга"}
	user := testUser()

	client.On("GetOrCreateUser", ctx, "6", "Ольга").Return(user, nil)

	engine.HandleText(ctx, from, "/new")
	engine.HandleText(ctx, from, "Заголовок")

	// a standalone command is honored without touching the dialogue
	replies := engine.HandleText(ctx, from, "/help")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "Помощь")

	sess, _ := store.Get(from.ID)
	assert.Equal(t, session.AwaitingDescription, sess.State)
	assert.Equal(t, "Заголовок", sess.DraftTitle)
}

func TestEngine_IdleTextIsDropped(t *testing.T) {
	engine, client, _ := newTestEngine()
	ctx := context.Background()

	replies := engine.HandleText(ctx, Identity{ID: 77}, "просто текст")
	assert.Nil(t, replies)

	client.AssertNotCalled(t, "GetOrCreateUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestEngine_SessionIsolation(t *testing.T) {
	engine, client, store := newTestEngine()
	ctx := context.Background()
	alice := Identity{ID: 1001, Name: "Алиса"}
	bob := Identity{ID: 1002, Name: "Борис"}

	client.On("GetOrCreateUser", ctx, "1001", "Алиса").Return(testUser(), nil)
	client.On("GetOrCreateUser", ctx, "1002", "Борис").Return(testUser(), nil)

	var wg sync.WaitGroup
	for _, run := range []struct {
		who   Identity
		title string
	}{
		{alice, "Заявка Алисы"},
		{bob, "Заявка Бориса"},
	} {
		wg.Add(1)
		go func(who Identity, title string) {
			defer wg.Done()
			engine.HandleText(ctx, who, "/new")
			engine.HandleText(ctx, who, title)
		}(run.who, run.title)
	}
	wg.Wait()

	aliceSess, _ := store.Get(alice.ID)
	bobSess, _ := store.Get(bob.ID)
	assert.Equal(t, "Заявка Алисы", aliceSess.DraftTitle)
	assert.Equal(t, "Заявка Бориса", bobSess.DraftTitle)
}

func TestEngine_ShowTickets(t *testing.T) {
	ctx := context.Background()
	user := testUser()

	t.Run("empty list", func(t *testing.T) {
		engine, client, _ := newTestEngine()
		client.On("GetOrCreateUser", ctx, "8", "Пользователь").Return(user, nil)
		client.On("ListTickets", ctx, user.ID.String()).Return([]domain.Ticket{}, nil)

		replies := engine.HandleText(ctx, Identity{ID: 8}, "/my")
		require.Len(t, replies, 1)
		assert.Contains(t, replies[0].Text, "пока нет заявок")
	})

	t.Run("listing carries action buttons", func(t *testing.T) {
		engine, client, _ := newTestEngine()
		client.On("GetOrCreateUser", ctx, "8", "Пользователь").Return(user, nil)
		client.On("ListTickets", ctx, user.ID.String()).
			Return([]domain.Ticket{*testTicket("Кран")}, nil)

		replies := engine.HandleText(ctx, Identity{ID: 8}, "/my")
		require.Len(t, replies, 1)
		assert.Contains(t, replies[0].Text, "Ваши заявки")
		require.Len(t, replies[0].Actions, 2)
		assert.Equal(t, CallbackRefreshTickets, replies[0].Actions[0].Data)
		require.Len(t, replies[0].Links, 1)
		assert.Contains(t, replies[0].Links[0].URL, "tgId=8")
	})

	t.Run("listing failure", func(t *testing.T) {
		engine, client, _ := newTestEngine()
		client.On("GetOrCreateUser", ctx, "8", "Пользователь").Return(user, nil)
		client.On("ListTickets", ctx, user.ID.String()).
			Return(nil, &apiclient.APIError{Message: "boom"})

		replies := engine.HandleText(ctx, Identity{ID: 8}, "/my")
		require.Len(t, replies, 1)
		assert.Contains(t, replies[0].Text, "Ошибка при получении заявок")
	})
}

func TestEngine_Callbacks(t *testing.T) {
	engine, client, store := newTestEngine()
	ctx := context.Background()
	from := Identity{ID: 21, Name: "Инна"}
	user := testUser()

	client.On("GetOrCreateUser", ctx, "21", "Инна").Return(user, nil)
	client.On("ListTickets", ctx, user.ID.String()).Return([]domain.Ticket{}, nil)

	replies := engine.HandleCallback(ctx, from, CallbackNewTicket)
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "Шаг 1 из 2")

	sess, _ := store.Get(from.ID)
	assert.Equal(t, session.AwaitingTitle, sess.State)

	replies = engine.HandleCallback(ctx, from, CallbackRefreshTickets)
	require.Len(t, replies, 1)

	assert.Nil(t, engine.HandleCallback(ctx, from, "nonsense"))
}

func TestEngine_Status(t *testing.T) {
	ctx := context.Background()

	t.Run("api reachable", func(t *testing.T) {
		engine, client, _ := newTestEngine()
		client.On("ListAllTickets", ctx).
			Return([]domain.Ticket{*testTicket("a"), *testTicket("b")}, nil)

		replies := engine.HandleText(ctx, Identity{ID: 31}, "/status")
		require.Len(t, replies, 1)
		assert.Contains(t, replies[0].Text, "API сервер доступен")
		assert.Contains(t, replies[0].Text, "Заявок в системе: 2")
	})

	t.Run("api unreachable", func(t *testing.T) {
		engine, client, _ := newTestEngine()
		client.On("ListAllTickets", ctx).
			Return(nil, &apiclient.APIError{Message: "connection refused"})

		replies := engine.HandleText(ctx, Identity{ID: 31}, "/status")
		require.Len(t, replies, 1)
		assert.Contains(t, replies[0].Text, "API сервер недоступен")
	})
}

func TestEngine_WebCommand(t *testing.T) {
	engine, _, _ := newTestEngine()

	replies := engine.HandleText(context.Background(), Identity{ID: 55}, "/web")
	require.Len(t, replies, 1)
	assert.True(t, strings.Contains(replies[0].Text, "tgId=55"))
	require.Len(t, replies[0].Links, 1)
	assert.Equal(t, "http://localhost:3000?tgId=55", replies[0].Links[0].URL)
}
