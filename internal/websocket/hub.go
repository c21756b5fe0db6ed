package websocket

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"

	"skab-service/internal/events"
	"skab-service/internal/models"
	"skab-service/internal/services"
	"skab-service/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// Envelope is the wire shape of a live-feed push. Delivery targets the
// union of conversation-key subscribers and explicitly targeted users.
type Envelope struct {
	Type            string          `json:"type"`
	ConversationKey string          `json:"conversationKey,omitempty"`
	TargetUserIDs   []uint          `json:"targetUserIds,omitempty"`
	Data            json.RawMessage `json:"data"`
}

// Hub owns the live subscription feed: one registry of websocket clients per
// instance, conversation-key subscriptions per client, and presence flips on
// register/unregister. Events flow bus -> redis pub/sub -> every hub
// instance -> local clients, so a single instance and a fleet behave alike.
type Hub struct {
	clients             map[*Client]bool
	userClients         map[uint]map[*Client]bool
	conversationClients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	subscribe  chan *subscription

	redisService *services.RedisService
	bus          *events.Bus
	pubsub       *redis.PubSub

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.RWMutex
	log    *logger.Logger
}

type subscription struct {
	client *Client
	key    string
	join   bool
}

func NewHub(redisService *services.RedisService, bus *events.Bus, log *logger.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		clients:             make(map[*Client]bool),
		userClients:         make(map[uint]map[*Client]bool),
		conversationClients: make(map[string]map[*Client]bool),
		register:            make(chan *Client),
		unregister:          make(chan *Client),
		subscribe:           make(chan *subscription),
		redisService:        redisService,
		bus:                 bus,
		ctx:                 ctx,
		cancel:              cancel,
		log:                 log,
	}
}

func (h *Hub) Run() {
	h.subscribeToBus()
	h.subscribeToRedis()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case sub := <-h.subscribe:
			h.handleSubscription(sub)

		case <-h.ctx.Done():
			h.log.Info("WebSocket hub shutting down")
			return
		}
	}
}

func (h *Hub) Stop() {
	h.cancel()
	if h.pubsub != nil {
		h.pubsub.Close()
	}
}

// subscribeToBus bridges domain events into the redis channel. The hub's own
// redis subscriber is the single local delivery path, so events are not
// double-delivered on the originating instance.
func (h *Hub) subscribeToBus() {
	h.bus.Subscribe(h.publishEvent,
		events.TypeMessageCreated,
		events.TypeMessageDeleted,
		events.TypeNotification,
	)
}

func (h *Hub) publishEvent(e events.Event) {
	env, ok := envelopeFor(e)
	if !ok {
		return
	}
	if err := h.redisService.PublishEvent(h.ctx, env); err != nil {
		h.log.Error("Failed to publish live event", "type", env.Type, "error", err)
	}
}

func envelopeFor(e events.Event) (*Envelope, bool) {
	switch ev := e.(type) {
	case events.MessageCreated:
		data, err := json.Marshal(ev.Message)
		if err != nil {
			return nil, false
		}
		return &Envelope{
			Type:            string(events.TypeMessageCreated),
			ConversationKey: ev.Message.ConversationKey,
			TargetUserIDs:   []uint{ev.Message.AuthorID, ev.PeerID},
			Data:            data,
		}, true
	case events.MessageDeleted:
		data, err := json.Marshal(map[string]string{"messageId": ev.MessageID})
		if err != nil {
			return nil, false
		}
		return &Envelope{
			Type:            string(events.TypeMessageDeleted),
			ConversationKey: ev.ConversationKey,
			Data:            data,
		}, true
	case events.NotificationCreated:
		data, err := json.Marshal(ev.Notification)
		if err != nil {
			return nil, false
		}
		return &Envelope{
			Type:          string(events.TypeNotification),
			TargetUserIDs: []uint{ev.Notification.OwnerID},
			Data:          data,
		}, true
	}
	return nil, false
}

func (h *Hub) subscribeToRedis() {
	h.pubsub = h.redisService.Client().GetClient().Subscribe(h.ctx, services.EventsChannel)

	go func() {
		ch := h.pubsub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var env Envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					h.log.Error("Failed to decode live event", "error", err)
					continue
				}
				h.deliver(&env, []byte(msg.Payload))
			case <-h.ctx.Done():
				return
			}
		}
	}()
}

// deliver pushes the raw envelope to every local client that either
// subscribed to the conversation key or is explicitly targeted. An envelope
// with neither is a broadcast (presence transitions).
func (h *Hub) deliver(env *Envelope, payload []byte) {
	h.mu.RLock()
	recipients := make(map[*Client]bool)
	if env.ConversationKey == "" && len(env.TargetUserIDs) == 0 {
		for client := range h.clients {
			recipients[client] = true
		}
	}
	if env.ConversationKey != "" {
		for client := range h.conversationClients[env.ConversationKey] {
			recipients[client] = true
		}
	}
	for _, userID := range env.TargetUserIDs {
		for client := range h.userClients[userID] {
			recipients[client] = true
		}
	}
	h.mu.RUnlock()

	for client := range recipients {
		client.enqueue(payload)
	}
}

// presenceChangedType is a feed-only event; presence never touches the bus.
const presenceChangedType = "presence.changed"

func (h *Hub) publishPresence(userID uint, online bool) {
	data, err := json.Marshal(map[string]interface{}{"userId": userID, "online": online})
	if err != nil {
		return
	}
	env := &Envelope{Type: presenceChangedType, Data: data}
	if err := h.redisService.PublishEvent(h.ctx, env); err != nil {
		h.log.Error("Failed to publish presence change", "userID", userID, "error", err)
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	if h.userClients[client.userID] == nil {
		h.userClients[client.userID] = make(map[*Client]bool)
	}
	h.userClients[client.userID][client] = true
	h.mu.Unlock()

	h.log.Info("Client registered", "clientID", client.id, "userID", client.userID)

	if err := h.redisService.SetUserOnline(h.ctx, client.userID); err != nil {
		h.log.Error("Failed to set user online", "userID", client.userID, "error", err)
	}
	h.publishPresence(client.userID, true)
}

// unregisterClient tears down every subscription held for the client so no
// listener outlives its principal's connection.
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	if set := h.userClients[client.userID]; set != nil {
		delete(set, client)
		if len(set) == 0 {
			delete(h.userClients, client.userID)
		}
	}
	for key := range client.conversations() {
		if set := h.conversationClients[key]; set != nil {
			delete(set, client)
			if len(set) == 0 {
				delete(h.conversationClients, key)
			}
		}
	}
	lastConnection := h.userClients[client.userID] == nil
	h.mu.Unlock()

	client.closeSendChannel()
	h.log.Info("Client unregistered", "clientID", client.id, "userID", client.userID)

	if lastConnection {
		if err := h.redisService.SetUserOffline(h.ctx, client.userID); err != nil {
			h.log.Error("Failed to set user offline", "userID", client.userID, "error", err)
		}
		h.publishPresence(client.userID, false)
	}
}

func (h *Hub) handleSubscription(sub *subscription) {
	// A client may only follow conversations it participates in.
	if sub.join && !participatesIn(sub.client.userID, sub.key) {
		h.log.Warn("Rejected foreign conversation subscription", "userID", sub.client.userID, "key", sub.key)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if sub.join {
		if h.conversationClients[sub.key] == nil {
			h.conversationClients[sub.key] = make(map[*Client]bool)
		}
		h.conversationClients[sub.key][sub.client] = true
		sub.client.addConversation(sub.key)
	} else {
		if set := h.conversationClients[sub.key]; set != nil {
			delete(set, sub.client)
			if len(set) == 0 {
				delete(h.conversationClients, sub.key)
			}
		}
		sub.client.removeConversation(sub.key)
	}
}

func participatesIn(userID uint, key string) bool {
	left, right, ok := strings.Cut(key, "_")
	if !ok {
		return false
	}
	a, err := strconv.ParseUint(left, 10, 64)
	if err != nil {
		return false
	}
	b, err := strconv.ParseUint(right, 10, 64)
	if err != nil {
		return false
	}
	if models.ConversationKey(uint(a), uint(b)) != key {
		return false
	}
	return uint(a) == userID || uint(b) == userID
}
