package pubsub

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang-jwt/jwt"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/pkg/circuitbreaker"
	"go.uber.org/ratelimit"
	"golang.org/x/sync/errgroup"
)

const (
	defaultRequestTimeout = 15 * time.Second
	defaultRatePerSecond  = 50
)

var emptyAddress = common.Address{}

// Listener is notified in-process of every published event.
type Listener func(event domain.Event)

// Options tweak the webhook delivery. Zero values fall back to defaults.
type Options struct {
	RequestTimeout time.Duration
	RatePerSecond  int
}

// Service publishes registry events to in-process listeners and to the
// webhook endpoints subscribed to their type.
type Service struct {
	lock      *sync.RWMutex
	subs      map[string]Subscription
	listeners []Listener

	httpClient *client
	cb         *gobreaker.CircuitBreaker
	limiter    ratelimit.Limiter
}

func NewService(opts Options) *Service {
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	rate := opts.RatePerSecond
	if rate <= 0 {
		rate = defaultRatePerSecond
	}

	return &Service{
		lock:       &sync.RWMutex{},
		subs:       make(map[string]Subscription),
		httpClient: newHTTPClient(timeout),
		cb:         circuitbreaker.NewCircuitBreaker("webhooks"),
		limiter:    ratelimit.New(rate),
	}
}

func (s *Service) Subscribe(topic, endpoint, secret string) (string, error) {
	sub, err := NewSubscription(topic, endpoint, secret)
	if err != nil {
		return "", err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	s.subs[sub.ID] = *sub
	return sub.ID, nil
}

func (s *Service) Unsubscribe(id string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.subs[id]; !ok {
		return ErrSubscriptionNotFound
	}
	delete(s.subs, id)
	return nil
}

// ListSubscriptionsForTopic returns the subscriptions notified of events of
// the given type, those for AnyTopic included.
func (s *Service) ListSubscriptionsForTopic(topic string) []Subscription {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.listSubscriptions(domain.EventType(topic))
}

func (s *Service) AddListener(l Listener) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.listeners = append(s.listeners, l)
}

// Publish notifies the listeners and then posts the event to every matching
// webhook endpoint. Deliveries run in parallel, the first failure, if any,
// is returned.
func (s *Service) Publish(ctx context.Context, event domain.Event) error {
	s.lock.RLock()
	listeners := append([]Listener{}, s.listeners...)
	subs := s.listSubscriptions(event.Type)
	s.lock.RUnlock()

	for _, l := range listeners {
		l(event)
	}

	if len(subs) <= 0 {
		return nil
	}

	msg := newMessage(event)
	payload := msg.serialize()

	eg := &errgroup.Group{}
	for i := range subs {
		sub := subs[i]
		eg.Go(func() error {
			s.limiter.Take()
			if err := s.doRequest(ctx, sub, msg.ID, payload); err != nil {
				return fmt.Errorf("webhook %s: %w", sub.Endpoint, err)
			}
			return nil
		})
	}
	return eg.Wait()
}

func (s *Service) listSubscriptions(eventType domain.EventType) subscriptions {
	subs := make(subscriptions, 0, len(s.subs))
	for _, sub := range s.subs {
		if sub.matches(eventType) {
			subs = append(subs, sub)
		}
	}
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].ID < subs[j].ID
	})
	return subs
}

func (s *Service) doRequest(
	ctx context.Context, sub Subscription, msgID, payload string,
) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		headers := map[string]string{
			"Content-Type": "application/json",
		}
		if sub.IsSecured() {
			token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
				Id:       msgID,
				IssuedAt: time.Now().Unix(),
			})
			tokenString, err := token.SignedString([]byte(sub.Secret))
			if err != nil {
				return nil, err
			}
			headers["Authorization"] = fmt.Sprintf("Bearer %s", tokenString)
		}

		status, resp, err := s.httpClient.post(ctx, sub.Endpoint, payload, headers)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d: %s", status, resp)
		}
		return nil, nil
	})
	if err != nil {
		log.WithError(err).Debugf("failed to deliver event to %s", sub.Endpoint)
	}
	return err
}
