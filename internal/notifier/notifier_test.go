package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	config "github.com/Keoroanthony/farmmarket/configs"
	"github.com/Keoroanthony/farmmarket/internal/models"
)

func sampleOrder() (models.User, models.Order) {
	seller := uint(2)
	user := models.User{ID: 1, Name: "Jane Customer", Email: "jane@email.com", Phone: "+254700000001"}
	order := models.Order{
		ID:              42,
		UserID:          1,
		TotalAmount:     decimal.RequireFromString("23.33"),
		Status:          models.StatusPending,
		ShippingAddress: "123 Main St",
		CreatedAt:       time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Items: []models.OrderItem{
			{ProductID: 1, Quantity: 2, Price: decimal.RequireFromString("4.99"), SellerID: &seller},
			{ProductID: 2, Quantity: 1, Price: decimal.RequireFromString("6.99")},
		},
	}
	return user, order
}

func TestSMSNotifierPostsForm(t *testing.T) {
	var form url.Values
	var apiKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		form, _ = url.ParseQuery(string(body))
		apiKey = r.Header.Get("apikey")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"SMSMessageData":{"Message":"Sent to 1/1"}}`))
	}))
	defer srv.Close()

	n := NewSMSNotifier(config.AfricaTalkingConfig{Username: "sandbox", APIKey: "k", SMSURL: srv.URL, SenderID: "FARM"}, srv.Client())
	user, order := sampleOrder()

	require.NoError(t, n.Notify(context.Background(), user, order))
	assert.Equal(t, "k", apiKey)
	assert.Equal(t, "+254700000001", form.Get("to"))
	assert.Equal(t, "FARM", form.Get("from"))
	assert.Contains(t, form.Get("message"), "#42")
	assert.Contains(t, form.Get("message"), "23.33")
}

func TestSMSNotifierErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"SMSMessageData":{"Message":"bad key"}}`))
	}))
	defer srv.Close()

	n := NewSMSNotifier(config.AfricaTalkingConfig{SMSURL: srv.URL}, srv.Client())
	user, order := sampleOrder()

	err := n.Notify(context.Background(), user, order)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad key")

	user.Phone = ""
	assert.ErrorIs(t, n.Notify(context.Background(), user, order), ErrNoRecipient)
}

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = in
	return &ses.SendEmailOutput{}, f.err
}

func TestEmailNotifier(t *testing.T) {
	client := &fakeSES{}
	n := NewEmailNotifierWithClient(client, "orders@farmmarket.test")
	user, order := sampleOrder()

	require.NoError(t, n.Notify(context.Background(), user, order))
	require.NotNil(t, client.input)
	assert.Equal(t, "orders@farmmarket.test", *client.input.Source)
	assert.Equal(t, []string{"jane@email.com"}, client.input.Destination.ToAddresses)
	assert.Contains(t, *client.input.Message.Subject.Data, "#42")
	assert.Contains(t, *client.input.Message.Body.Text.Data, "KES 23.33")
	assert.Contains(t, *client.input.Message.Body.Html.Data, "2 x KES 4.99")

	client.err = errors.New("throttled")
	assert.ErrorContains(t, n.Notify(context.Background(), user, order), "throttled")
}

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error { return nil }

func TestEventPublisher(t *testing.T) {
	w := &fakeWriter{}
	user, order := sampleOrder()

	require.NoError(t, NewEventPublisher(w).Notify(context.Background(), user, order))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "42", string(w.msgs[0].Key))

	var evt OrderEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &evt))
	assert.Equal(t, EventOrderPlaced, evt.Event)
	assert.Equal(t, uint(42), evt.OrderID)
	require.Len(t, evt.Items, 2)
	require.NotNil(t, evt.Items[0].SellerID)
	assert.Equal(t, uint(2), *evt.Items[0].SellerID)
	assert.Nil(t, evt.Items[1].SellerID)
}

type stubNotifier struct {
	name  string
	err   error
	calls chan uint
}

func (s *stubNotifier) Name() string { return s.name }

func (s *stubNotifier) Notify(ctx context.Context, _ models.User, order models.Order) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	s.calls <- order.ID
	return s.err
}

func TestDispatcherSurvivesCanceledRequest(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ok := &stubNotifier{name: "sms", calls: make(chan uint, 1)}
	failing := &stubNotifier{name: "email", err: errors.New("smtp down"), calls: make(chan uint, 1)}
	d := NewDispatcher(zap.New(core), ok, failing)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	user, order := sampleOrder()
	d.OrderPlaced(ctx, user, order)
	d.Wait()

	assert.Equal(t, uint(42), <-ok.calls)
	assert.Equal(t, uint(42), <-failing.calls)

	warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "email", warnings[0].ContextMap()["channel"])
}
