package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"multipost-bot/internal/database"
	"multipost-bot/internal/database/models"
	"multipost-bot/internal/locales"
	"multipost-bot/internal/session"
)

// --- Mocks ---

// MockBot is a mock implementing the telegoapi.BotAPI interface
type MockBot struct {
	mock.Mock
}

func (m *MockBot) SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error) {
	args := m.Called(ctx, params)
	if msg, ok := args.Get(0).(*telego.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) ForwardMessage(ctx context.Context, params *telego.ForwardMessageParams) (*telego.Message, error) {
	args := m.Called(ctx, params)
	if msg, ok := args.Get(0).(*telego.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) CopyMessage(ctx context.Context, params *telego.CopyMessageParams) (*telego.MessageID, error) {
	args := m.Called(ctx, params)
	if msgID, ok := args.Get(0).(*telego.MessageID); ok {
		return msgID, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) EditMessageText(ctx context.Context, params *telego.EditMessageTextParams) (*telego.Message, error) {
	args := m.Called(ctx, params)
	if msg, ok := args.Get(0).(*telego.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) EditMessageCaption(ctx context.Context, params *telego.EditMessageCaptionParams) (*telego.Message, error) {
	args := m.Called(ctx, params)
	if msg, ok := args.Get(0).(*telego.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) SendMediaGroup(ctx context.Context, params *telego.SendMediaGroupParams) ([]telego.Message, error) {
	args := m.Called(ctx, params)
	if msgs, ok := args.Get(0).([]telego.Message); ok {
		return msgs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) SendDocument(ctx context.Context, params *telego.SendDocumentParams) (*telego.Message, error) {
	args := m.Called(ctx, params)
	if msg, ok := args.Get(0).(*telego.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) GetChat(ctx context.Context, params *telego.GetChatParams) (*telego.ChatFullInfo, error) {
	args := m.Called(ctx, params)
	if chat, ok := args.Get(0).(*telego.ChatFullInfo); ok {
		return chat, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) GetChatMember(ctx context.Context, params *telego.GetChatMemberParams) (telego.ChatMember, error) {
	args := m.Called(ctx, params)
	if member, ok := args.Get(0).(telego.ChatMember); ok {
		return member, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) GetMe(ctx context.Context) (*telego.User, error) {
	args := m.Called(ctx)
	if user, ok := args.Get(0).(*telego.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) EditMessageReplyMarkup(ctx context.Context, params *telego.EditMessageReplyMarkupParams) (*telego.Message, error) {
	args := m.Called(ctx, params)
	if msg, ok := args.Get(0).(*telego.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) AnswerCallbackQuery(ctx context.Context, params *telego.AnswerCallbackQueryParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

func (m *MockBot) SetMyCommands(ctx context.Context, params *telego.SetMyCommandsParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

// MockGate is a mock implementing auth.GateInterface
type MockGate struct {
	mock.Mock
}

func (m *MockGate) Authorize(ctx context.Context, userID int64, roles ...models.Role) (bool, error) {
	callArgs := make([]interface{}, 0, len(roles)+2)
	callArgs = append(callArgs, ctx, userID)
	for _, role := range roles {
		callArgs = append(callArgs, role)
	}
	args := m.Called(callArgs...)
	return args.Bool(0), args.Error(1)
}

func (m *MockGate) Role(ctx context.Context, userID int64) (models.Role, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.Role), args.Error(1)
}

// MockUserRepository is a mock for database.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	if user, ok := args.Get(0).(*models.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) AddUser(ctx context.Context, userID int64, role models.Role) error {
	args := m.Called(ctx, userID, role)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUserRole(ctx context.Context, userID int64, role models.Role) error {
	args := m.Called(ctx, userID, role)
	return args.Error(0)
}

func (m *MockUserRepository) DeleteUser(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if users, ok := args.Get(0).([]models.User); ok {
		return users, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockChannelRepository is a mock for database.ChannelRepository
type MockChannelRepository struct {
	mock.Mock
}

func (m *MockChannelRepository) GetChannel(ctx context.Context, channelID int64) (*models.Channel, error) {
	args := m.Called(ctx, channelID)
	if channel, ok := args.Get(0).(*models.Channel); ok {
		return channel, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockChannelRepository) ListChannels(ctx context.Context, limit, offset int) ([]models.Channel, error) {
	args := m.Called(ctx, limit, offset)
	if channels, ok := args.Get(0).([]models.Channel); ok {
		return channels, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockChannelRepository) ListUserChannels(ctx context.Context, userID int64, limit, offset int) ([]models.Channel, error) {
	args := m.Called(ctx, userID, limit, offset)
	if channels, ok := args.Get(0).([]models.Channel); ok {
		return channels, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockChannelRepository) SaveChannel(ctx context.Context, userID, channelID int64, name, link string) error {
	args := m.Called(ctx, userID, channelID, name, link)
	return args.Error(0)
}

func (m *MockChannelRepository) DeleteChannel(ctx context.Context, channelID int64) error {
	args := m.Called(ctx, channelID)
	return args.Error(0)
}

func (m *MockChannelRepository) CountChannels(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockChannelRepository) CountUserChannels(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

// MockGroupRepository is a mock for database.GroupRepository
type MockGroupRepository struct {
	mock.Mock
}

func (m *MockGroupRepository) GetGroup(ctx context.Context, groupID int64) (*models.Group, error) {
	args := m.Called(ctx, groupID)
	if group, ok := args.Get(0).(*models.Group); ok {
		return group, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGroupRepository) ListGroups(ctx context.Context, limit, offset int) ([]models.Group, error) {
	args := m.Called(ctx, limit, offset)
	if groups, ok := args.Get(0).([]models.Group); ok {
		return groups, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGroupRepository) CountGroups(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockGroupRepository) CreateGroup(ctx context.Context, userID int64, name string, channelIDs []int64) (int64, error) {
	args := m.Called(ctx, userID, name, channelIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGroupRepository) RenameGroup(ctx context.Context, groupID, userID int64, name string) error {
	args := m.Called(ctx, groupID, userID, name)
	return args.Error(0)
}

func (m *MockGroupRepository) DeleteGroup(ctx context.Context, groupID int64) error {
	args := m.Called(ctx, groupID)
	return args.Error(0)
}

func (m *MockGroupRepository) AddChannelToGroup(ctx context.Context, groupID, channelID int64) error {
	args := m.Called(ctx, groupID, channelID)
	return args.Error(0)
}

func (m *MockGroupRepository) RemoveChannelFromGroup(ctx context.Context, groupID, channelID int64) error {
	args := m.Called(ctx, groupID, channelID)
	return args.Error(0)
}

func (m *MockGroupRepository) ListGroupChannels(ctx context.Context, groupID int64, limit, offset int) ([]models.Channel, error) {
	args := m.Called(ctx, groupID, limit, offset)
	if channels, ok := args.Get(0).([]models.Channel); ok {
		return channels, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGroupRepository) CountGroupChannels(ctx context.Context, groupID int64) (int, error) {
	args := m.Called(ctx, groupID)
	return args.Int(0), args.Error(1)
}

// MockPostRepository is a mock for database.PostRepository
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) SavePost(ctx context.Context, post models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) ListPosts(ctx context.Context, channelID int64) ([]models.Post, error) {
	args := m.Called(ctx, channelID)
	if posts, ok := args.Get(0).([]models.Post); ok {
		return posts, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockEngine is a mock implementing BroadcastEngine
type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) Broadcast(ctx context.Context, requester telego.User, message telego.Message, channelIDs []int64, sendAt *time.Time) error {
	args := m.Called(ctx, requester, message, channelIDs, sendAt)
	return args.Error(0)
}

func (m *MockEngine) AppendAlbumPart(message telego.Message) bool {
	args := m.Called(message)
	return args.Bool(0)
}

// --- Test Suite Setup ---

type handlerSuite struct {
	bot      *MockBot
	gate     *MockGate
	users    *MockUserRepository
	channels *MockChannelRepository
	groups   *MockGroupRepository
	posts    *MockPostRepository
	sessions *session.Manager
	engine   *MockEngine
	handler  *MessageHandler
}

func setupHandlerSuite(t *testing.T) *handlerSuite {
	t.Helper()
	locales.Init("en")

	s := &handlerSuite{
		bot:      new(MockBot),
		gate:     new(MockGate),
		users:    new(MockUserRepository),
		channels: new(MockChannelRepository),
		groups:   new(MockGroupRepository),
		posts:    new(MockPostRepository),
		sessions: session.NewManager(),
		engine:   new(MockEngine),
	}

	handler, err := NewMessageHandler(s.gate, s.users, s.channels, s.groups, s.posts, s.sessions, s.engine, 20)
	require.NoError(t, err)
	s.handler = handler
	return s
}

func commandMessage(userID, chatID int64, text string) telego.Message {
	return telego.Message{
		MessageID: 100,
		From:      &telego.User{ID: userID, LanguageCode: "en"},
		Chat:      telego.Chat{ID: chatID},
		Text:      text,
	}
}

// captureSendMessage registers a SendMessage expectation and records the
// texts of every sent message.
func captureSendMessage(bot *MockBot, texts *[]string) {
	bot.On("SendMessage", mock.Anything, mock.AnythingOfType("*telego.SendMessageParams")).
		Run(func(args mock.Arguments) {
			params := args.Get(1).(*telego.SendMessageParams)
			*texts = append(*texts, params.Text)
		}).
		Return(&telego.Message{}, nil)
}

// --- Tests ---

func TestHandleStart(t *testing.T) {
	ctx := context.Background()

	t.Run("Admin", func(t *testing.T) {
		s := setupHandlerSuite(t)
		s.gate.On("Role", ctx, int64(1)).Return(models.RoleAdmin, nil).Once()

		var texts []string
		captureSendMessage(s.bot, &texts)

		err := s.handler.HandleStart(ctx, s.bot, commandMessage(1, 500, "/start"))

		assert.NoError(t, err)
		require.Len(t, texts, 1)
		expected := locales.GetMessage(locales.NewLocalizer("en"), "MsgWelcomeAdmin", nil, nil)
		assert.Equal(t, expected, texts[0])
	})

	t.Run("UnknownUser", func(t *testing.T) {
		s := setupHandlerSuite(t)
		s.gate.On("Role", ctx, int64(2)).Return(models.Role(""), database.ErrNotFound).Once()

		var texts []string
		captureSendMessage(s.bot, &texts)

		err := s.handler.HandleStart(ctx, s.bot, commandMessage(2, 500, "/start"))

		assert.NoError(t, err)
		require.Len(t, texts, 1)
		expected := locales.GetMessage(locales.NewLocalizer("en"), "MsgWelcomeUser", nil, nil)
		assert.Equal(t, expected, texts[0])
	})
}

func TestHandleChannels(t *testing.T) {
	ctx := context.Background()

	t.Run("RendersPicker", func(t *testing.T) {
		s := setupHandlerSuite(t)
		s.gate.On("Authorize", ctx, int64(1), models.RoleAdmin, models.RoleOperator).Return(true, nil).Once()
		s.channels.On("CountChannels", ctx).Return(2, nil).Once()
		s.channels.On("ListChannels", ctx, 20, 0).Return([]models.Channel{
			{ChannelID: -1001, ChannelName: "Alpha"},
			{ChannelID: -1002, ChannelName: "Beta"},
		}, nil).Once()

		var captured *telego.SendMessageParams
		s.bot.On("SendMessage", ctx, mock.AnythingOfType("*telego.SendMessageParams")).
			Run(func(args mock.Arguments) {
				captured = args.Get(1).(*telego.SendMessageParams)
			}).
			Return(&telego.Message{}, nil).Once()

		err := s.handler.HandleChannels(ctx, s.bot, commandMessage(1, 500, "/channels"))

		assert.NoError(t, err)
		s.channels.AssertExpectations(t)
		require.NotNil(t, captured)
		assert.Contains(t, captured.Text, "2")
		markup, ok := captured.ReplyMarkup.(*telego.InlineKeyboardMarkup)
		require.True(t, ok)
		assert.Equal(t, "Alpha", markup.InlineKeyboard[0][0].Text)
		assert.Equal(t, "channels_toggle_-1001", markup.InlineKeyboard[0][0].CallbackData)
	})

	t.Run("Empty", func(t *testing.T) {
		s := setupHandlerSuite(t)
		s.gate.On("Authorize", ctx, int64(1), models.RoleAdmin, models.RoleOperator).Return(true, nil).Once()
		s.channels.On("CountChannels", ctx).Return(0, nil).Once()
		s.channels.On("ListChannels", ctx, 20, 0).Return([]models.Channel{}, nil).Once()

		var texts []string
		captureSendMessage(s.bot, &texts)

		err := s.handler.HandleChannels(ctx, s.bot, commandMessage(1, 500, "/channels"))

		assert.NoError(t, err)
		require.Len(t, texts, 1)
		expected := locales.GetMessage(locales.NewLocalizer("en"), "MsgNoChannels", nil, nil)
		assert.Equal(t, expected, texts[0])
	})

	t.Run("DeniedWithoutRole", func(t *testing.T) {
		s := setupHandlerSuite(t)
		s.gate.On("Authorize", ctx, int64(9), models.RoleAdmin, models.RoleOperator).Return(false, nil).Once()

		var texts []string
		captureSendMessage(s.bot, &texts)

		err := s.handler.HandleChannels(ctx, s.bot, commandMessage(9, 500, "/channels"))

		assert.NoError(t, err)
		require.Len(t, texts, 1)
		expected := locales.GetMessage(locales.NewLocalizer("en"), "MsgNoAccess", nil, nil)
		assert.Equal(t, expected, texts[0])
		s.channels.AssertNotCalled(t, "ListChannels", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHandlePosts(t *testing.T) {
	ctx := context.Background()
	s := setupHandlerSuite(t)

	s.gate.On("Authorize", ctx, int64(1), models.RoleAdmin, models.RoleOperator).Return(true, nil).Once()
	s.channels.On("CountUserChannels", ctx, int64(1)).Return(1, nil).Once()
	s.channels.On("ListUserChannels", ctx, int64(1), 20, 0).Return([]models.Channel{
		{ChannelID: -1001, ChannelName: "Alpha", ChannelLink: "https://t.me/alpha"},
	}, nil).Once()

	var captured *telego.SendMessageParams
	s.bot.On("SendMessage", ctx, mock.AnythingOfType("*telego.SendMessageParams")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*telego.SendMessageParams)
		}).
		Return(&telego.Message{}, nil).Once()

	err := s.handler.HandlePosts(ctx, s.bot, commandMessage(1, 500, "/posts"))

	assert.NoError(t, err)
	s.channels.AssertExpectations(t)
	s.channels.AssertNotCalled(t, "ListChannels", mock.Anything, mock.Anything, mock.Anything)
	require.NotNil(t, captured)
	markup, ok := captured.ReplyMarkup.(*telego.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, markup.InlineKeyboard[0], 2, "linked channels carry an open-link button")
	assert.Equal(t, "posts_channels_toggle_-1001", markup.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "https://t.me/alpha", markup.InlineKeyboard[0][1].URL)
	linkLabel := locales.GetMessage(locales.NewLocalizer("en"), "BtnOpenLink", nil, nil)
	assert.Equal(t, linkLabel, markup.InlineKeyboard[0][1].Text)
}

func TestHandleAddUser(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		s := setupHandlerSuite(t)
		s.gate.On("Authorize", ctx, int64(1), models.RoleAdmin).Return(true, nil).Once()
		s.users.On("GetUser", ctx, int64(42)).Return(nil, database.ErrNotFound).Once()
		s.users.On("AddUser", ctx, int64(42), models.RoleOperator).Return(nil).Once()

		var texts []string
		captureSendMessage(s.bot, &texts)

		err := s.handler.HandleAddUser(ctx, s.bot, commandMessage(1, 500, "/add_user 42 operator"))

		assert.NoError(t, err)
		s.users.AssertExpectations(t)
		require.Len(t, texts, 1)
		assert.Contains(t, texts[0], "42")
		assert.Contains(t, texts[0], "operator")
	})

	t.Run("NotAdmin", func(t *testing.T) {
		s := setupHandlerSuite(t)
		s.gate.On("Authorize", ctx, int64(5), models.RoleAdmin).Return(false, nil).Once()

		var texts []string
		captureSendMessage(s.bot, &texts)

		err := s.handler.HandleAddUser(ctx, s.bot, commandMessage(5, 500, "/add_user 42 operator"))

		assert.NoError(t, err)
		s.users.AssertNotCalled(t, "AddUser", mock.Anything, mock.Anything, mock.Anything)
		require.Len(t, texts, 1)
		expected := locales.GetMessage(locales.NewLocalizer("en"), "MsgAdminOnly", nil, nil)
		assert.Equal(t, expected, texts[0])
	})

	t.Run("BadArguments", func(t *testing.T) {
		s := setupHandlerSuite(t)
		s.gate.On("Authorize", ctx, int64(1), models.RoleAdmin).Return(true, nil).Once()

		var texts []string
		captureSendMessage(s.bot, &texts)

		err := s.handler.HandleAddUser(ctx, s.bot, commandMessage(1, 500, "/add_user 42"))

		assert.NoError(t, err)
		require.Len(t, texts, 1)
		expected := locales.GetMessage(locales.NewLocalizer("en"), "MsgUserAddUsage", nil, nil)
		assert.Equal(t, expected, texts[0])
	})

	t.Run("InvalidRole", func(t *testing.T) {
		s := setupHandlerSuite(t)
		s.gate.On("Authorize", ctx, int64(1), models.RoleAdmin).Return(true, nil).Once()

		var texts []string
		captureSendMessage(s.bot, &texts)

		err := s.handler.HandleAddUser(ctx, s.bot, commandMessage(1, 500, "/add_user 42 overlord"))

		assert.NoError(t, err)
		s.users.AssertNotCalled(t, "AddUser", mock.Anything, mock.Anything, mock.Anything)
		require.Len(t, texts, 1)
		expected := locales.GetMessage(locales.NewLocalizer("en"), "MsgUserRoleInvalid", nil, nil)
		assert.Equal(t, expected, texts[0])
	})

	t.Run("AlreadyExists", func(t *testing.T) {
		s := setupHandlerSuite(t)
		s.gate.On("Authorize", ctx, int64(1), models.RoleAdmin).Return(true, nil).Once()
		s.users.On("GetUser", ctx, int64(42)).Return(&models.User{UserID: 42, Role: models.RoleUser}, nil).Once()

		var texts []string
		captureSendMessage(s.bot, &texts)

		err := s.handler.HandleAddUser(ctx, s.bot, commandMessage(1, 500, "/add_user 42 admin"))

		assert.NoError(t, err)
		s.users.AssertNotCalled(t, "AddUser", mock.Anything, mock.Anything, mock.Anything)
		require.Len(t, texts, 1)
		assert.Contains(t, texts[0], "42")
	})
}

func TestHandleDeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("NotFound", func(t *testing.T) {
		s := setupHandlerSuite(t)
		s.gate.On("Authorize", ctx, int64(1), models.RoleAdmin).Return(true, nil).Once()
		s.users.On("DeleteUser", ctx, int64(42)).Return(database.ErrNotFound).Once()

		var texts []string
		captureSendMessage(s.bot, &texts)

		err := s.handler.HandleDeleteUser(ctx, s.bot, commandMessage(1, 500, "/delete_user 42"))

		assert.NoError(t, err)
		require.Len(t, texts, 1)
		expected := locales.GetMessage(locales.NewLocalizer("en"), "MsgUserNotFound", map[string]interface{}{"ID": int64(42)}, nil)
		assert.Equal(t, expected, texts[0])
	})
}

func TestHandleViewUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("ListsUsers", func(t *testing.T) {
		s := setupHandlerSuite(t)
		s.gate.On("Authorize", ctx, int64(1), models.RoleAdmin).Return(true, nil).Once()
		s.users.On("ListUsers", ctx).Return([]models.User{
			{UserID: 42, Role: models.RoleAdmin},
			{UserID: 43, Role: models.RoleOperator},
		}, nil).Once()

		var texts []string
		captureSendMessage(s.bot, &texts)

		err := s.handler.HandleViewUsers(ctx, s.bot, commandMessage(1, 500, "/view_user"))

		assert.NoError(t, err)
		require.Len(t, texts, 1)
		assert.Contains(t, texts[0], "42 - admin")
		assert.Contains(t, texts[0], "43 - operator")
	})

	t.Run("Empty", func(t *testing.T) {
		s := setupHandlerSuite(t)
		s.gate.On("Authorize", ctx, int64(1), models.RoleAdmin).Return(true, nil).Once()
		s.users.On("ListUsers", ctx).Return([]models.User{}, nil).Once()

		var texts []string
		captureSendMessage(s.bot, &texts)

		err := s.handler.HandleViewUsers(ctx, s.bot, commandMessage(1, 500, "/view_user"))

		assert.NoError(t, err)
		require.Len(t, texts, 1)
		expected := locales.GetMessage(locales.NewLocalizer("en"), "MsgUsersEmpty", nil, nil)
		assert.Equal(t, expected, texts[0])
	})
}

func TestBotCommands(t *testing.T) {
	s := setupHandlerSuite(t)

	cmds := s.handler.BotCommands()

	require.Len(t, cmds, 8)
	assert.Equal(t, "start", cmds[0].Command)
	assert.NotEmpty(t, cmds[0].Description)
	assert.Nil(t, s.handler.GetCommandHandler("bogus"))
	assert.NotNil(t, s.handler.GetCommandHandler("add_user"))
}
