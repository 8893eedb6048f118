package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/gotp/internal/otp/entity"
	"github.com/shandysiswandi/gotp/internal/otp/outbound/cache"
	"github.com/shandysiswandi/gotp/internal/pkg/clock"
	"github.com/shandysiswandi/gotp/internal/pkg/config"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/pkg/hash"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/kvstore"
	"github.com/shandysiswandi/gotp/internal/pkg/otp"
	"github.com/shandysiswandi/gotp/internal/pkg/validator"
)

const testConfig = `
otp:
  length: 6
  expiry_seconds: 300
  cooldown_seconds: 30
notification:
  locale:
    default: en_US
`

type fakeNotifier struct {
	mu         sync.Mutex
	deliveries []entity.Delivery
}

func (f *fakeNotifier) Notify(_ context.Context, d entity.Delivery) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deliveries = append(f.deliveries, d)
	return "cid-" + d.Code
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.deliveries)
}

type seqGenerator struct {
	codes []string
	i     int
}

func (g *seqGenerator) Generate(int) (string, error) {
	c := g.codes[g.i%len(g.codes)]
	g.i++
	return c, nil
}

type brokenStore struct{}

func (brokenStore) Put(context.Context, string, string, time.Duration, time.Duration) error {
	return errors.Join(entity.ErrStoreUnavailable, errors.New("dial tcp: refused"))
}
func (brokenStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.Join(entity.ErrStoreUnavailable, errors.New("dial tcp: refused"))
}
func (brokenStore) GetCooldown(context.Context, string) (time.Time, bool, error) {
	return time.Time{}, false, errors.Join(entity.ErrStoreUnavailable, errors.New("dial tcp: refused"))
}
func (brokenStore) Delete(context.Context, string) error {
	return errors.Join(entity.ErrStoreUnavailable, errors.New("dial tcp: refused"))
}
func (brokenStore) Ping(context.Context) error {
	return errors.Join(entity.ErrStoreUnavailable, errors.New("dial tcp: refused"))
}

type fixture struct {
	uc       *Usecase
	clock    *clock.Manual
	kv       *kvstore.Memory
	notifier *fakeNotifier
}

func newFixture(t *testing.T, gen otp.Generator, h hash.Hash) *fixture {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(testConfig))
	require.NoError(t, err)

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	clk := clock.NewManual(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	kv := kvstore.NewMemory(clk, 0)
	t.Cleanup(func() { _ = kv.Close() })

	if gen == nil {
		gen = otp.NewNumeric()
	}
	if h == nil {
		h = hash.NewSHA256()
	}

	n := &fakeNotifier{}
	uc := New(Dependency{
		RepoCode:     cache.New(kv, clk, instrument.NewNoop()),
		RepoNotifier: n,
		Validator:    v,
		Config:       cfg,
		Hash:         h,
		Code:         gen,
		Clock:        clk,
		Instrument:   instrument.NewNoop(),
	})

	return &fixture{uc: uc, clock: clk, kv: kv, notifier: n}
}

func smsInput(id string) GenerateInput {
	return GenerateInput{Identifier: id, Channel: "SMS", FirstName: "Ada", LastName: "Lovelace"}
}

func codeOf(err error) goerror.Code {
	var gerr *goerror.Error
	if errors.As(err, &gerr) {
		return gerr.Code()
	}
	return -1
}

func TestUsecase_EndToEnd(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	out, err := f.uc.Generate(ctx, smsInput("+15550001111"))
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9]{6}$`, out.Code)
	assert.Equal(t, 300*time.Second, out.ExpiresIn)
	assert.Equal(t, "cid-"+out.Code, out.CorrelationID)

	err = f.uc.Verify(ctx, VerifyInput{Identifier: "+15550001111", Code: wrongCode(out.Code)})
	assert.ErrorIs(t, err, entity.ErrInvalid)
	assert.Equal(t, goerror.CodeMismatch, codeOf(err))

	require.NoError(t, f.uc.Verify(ctx, VerifyInput{Identifier: "+15550001111", Code: out.Code}))

	err = f.uc.Verify(ctx, VerifyInput{Identifier: "+15550001111", Code: out.Code})
	assert.ErrorIs(t, err, entity.ErrNotFound)
	assert.Equal(t, goerror.CodeNotFound, codeOf(err))
}

func TestUsecase_GenerateSupersedes(t *testing.T) {
	f := newFixture(t, &seqGenerator{codes: []string{"111111", "222222"}}, nil)
	ctx := context.Background()

	first, err := f.uc.Generate(ctx, smsInput("+15550001111"))
	require.NoError(t, err)
	second, err := f.uc.Generate(ctx, smsInput("+15550001111"))
	require.NoError(t, err)

	err = f.uc.Verify(ctx, VerifyInput{Identifier: "+15550001111", Code: first.Code})
	assert.ErrorIs(t, err, entity.ErrInvalid)

	require.NoError(t, f.uc.Verify(ctx, VerifyInput{Identifier: "+15550001111", Code: second.Code}))
}

func TestUsecase_WrongCodeKeepsRecord(t *testing.T) {
	f := newFixture(t, &seqGenerator{codes: []string{"424242"}}, nil)
	ctx := context.Background()

	_, err := f.uc.Generate(ctx, smsInput("+15550001111"))
	require.NoError(t, err)

	for range 3 {
		assert.ErrorIs(t, f.uc.Verify(ctx, VerifyInput{Identifier: "+15550001111", Code: "000000"}), entity.ErrInvalid)
	}
	require.NoError(t, f.uc.Verify(ctx, VerifyInput{Identifier: "+15550001111", Code: "424242"}))
}

func TestUsecase_ExpiredCode(t *testing.T) {
	f := newFixture(t, &seqGenerator{codes: []string{"424242"}}, nil)
	ctx := context.Background()

	_, err := f.uc.Generate(ctx, smsInput("+15550001111"))
	require.NoError(t, err)

	f.clock.Advance(301 * time.Second)
	assert.ErrorIs(t, f.uc.Verify(ctx, VerifyInput{Identifier: "+15550001111", Code: "424242"}), entity.ErrNotFound)
}

func TestUsecase_Resend(t *testing.T) {
	f := newFixture(t, &seqGenerator{codes: []string{"111111", "222222"}}, nil)
	ctx := context.Background()

	_, err := f.uc.Generate(ctx, smsInput("+15550001111"))
	require.NoError(t, err)

	f.clock.Advance(10500 * time.Millisecond)
	_, err = f.uc.Resend(ctx, smsInput("+15550001111"))
	require.ErrorIs(t, err, entity.ErrCooldownActive)
	assert.Equal(t, goerror.CodeTooManyRequest, codeOf(err))

	var cd *entity.CooldownError
	require.ErrorAs(t, err, &cd)
	assert.Equal(t, 20, cd.RemainingSeconds())

	f.clock.Advance(20 * time.Second)
	out, err := f.uc.Resend(ctx, smsInput("+15550001111"))
	require.NoError(t, err)
	assert.Equal(t, "222222", out.Code)
	assert.Equal(t, 2, f.notifier.count())

	assert.ErrorIs(t, f.uc.Verify(ctx, VerifyInput{Identifier: "+15550001111", Code: "111111"}), entity.ErrInvalid)
	require.NoError(t, f.uc.Verify(ctx, VerifyInput{Identifier: "+15550001111", Code: "222222"}))
}

func TestUsecase_ResendWithoutPriorCode(t *testing.T) {
	f := newFixture(t, nil, nil)

	out, err := f.uc.Resend(context.Background(), smsInput("+15550002222"))
	require.NoError(t, err)
	assert.Len(t, out.Code, 6)
}

func TestUsecase_HashedAtRest(t *testing.T) {
	f := newFixture(t, &seqGenerator{codes: []string{"123456"}}, nil)
	ctx := context.Background()

	_, err := f.uc.Generate(ctx, smsInput("+15550001111"))
	require.NoError(t, err)

	stored, err := f.kv.Get(ctx, "OTP:+15550001111")
	require.NoError(t, err)
	assert.NotEqual(t, "123456", stored)
	assert.Len(t, stored, 64)
}

func TestUsecase_DeliveryPayload(t *testing.T) {
	f := newFixture(t, &seqGenerator{codes: []string{"123456"}}, nil)

	_, err := f.uc.Generate(context.Background(), GenerateInput{
		Identifier: "  Ada@Example.com ",
		Channel:    "email",
		FirstName:  " Ada ",
		LastName:   "O'Neil-Smith",
	})
	require.NoError(t, err)

	require.Equal(t, 1, f.notifier.count())
	assert.Equal(t, entity.Delivery{
		Identifier: "ada@example.com",
		Code:       "123456",
		Recipient: entity.RecipientInfo{
			Channel:   entity.ChannelEmail,
			FirstName: "Ada",
			LastName:  "O'Neil-Smith",
			Locale:    "en_US",
		},
	}, f.notifier.deliveries[0])
}

func TestUsecase_Validation(t *testing.T) {
	tests := []struct {
		name  string
		in    GenerateInput
		field string
	}{
		{
			name:  "unknown channel",
			in:    GenerateInput{Identifier: "+15550001111", Channel: "FAX", FirstName: "Ada", LastName: "L"},
			field: "channel",
		},
		{
			name:  "sms with email identifier",
			in:    GenerateInput{Identifier: "ada@example.com", Channel: "SMS", FirstName: "Ada", LastName: "L"},
			field: "identifier",
		},
		{
			name:  "email with phone identifier",
			in:    GenerateInput{Identifier: "+15550001111", Channel: "EMAIL", FirstName: "Ada", LastName: "L"},
			field: "identifier",
		},
		{
			name:  "name with digits",
			in:    GenerateInput{Identifier: "+15550001111", Channel: "SMS", FirstName: "Ada1", LastName: "L"},
			field: "first_name",
		},
		{
			name:  "bad locale",
			in:    GenerateInput{Identifier: "+15550001111", Channel: "SMS", FirstName: "Ada", LastName: "L", Locale: "english"},
			field: "locale",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil, nil)

			_, err := f.uc.Generate(context.Background(), tt.in)
			require.Error(t, err)
			assert.Equal(t, goerror.CodeInvalidInput, codeOf(err))

			var verr validator.V10ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr, tt.field)
			assert.Zero(t, f.notifier.count())
		})
	}
}

func TestUsecase_VerifyValidation(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		in   VerifyInput
	}{
		{name: "missing identifier", in: VerifyInput{Code: "123456"}},
		{name: "non numeric", in: VerifyInput{Identifier: "+15550001111", Code: "12a456"}},
		{name: "too short", in: VerifyInput{Identifier: "+15550001111", Code: "12345"}},
		{name: "too long", in: VerifyInput{Identifier: "+15550001111", Code: "1234567"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, goerror.CodeInvalidInput, codeOf(f.uc.Verify(ctx, tt.in)))
		})
	}
}

func TestUsecase_StoreUnavailable(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.uc.repoCode = brokenStore{}
	ctx := context.Background()

	_, err := f.uc.Generate(ctx, smsInput("+15550001111"))
	assert.ErrorIs(t, err, entity.ErrStoreUnavailable)
	assert.Equal(t, goerror.CodeServiceUnavailable, codeOf(err))

	err = f.uc.Verify(ctx, VerifyInput{Identifier: "+15550001111", Code: "123456"})
	assert.ErrorIs(t, err, entity.ErrStoreUnavailable)

	_, err = f.uc.Resend(ctx, smsInput("+15550001111"))
	assert.ErrorIs(t, err, entity.ErrStoreUnavailable)

	assert.Zero(t, f.notifier.count())
}

func TestUsecase_SelfTest(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	out, err := f.uc.SelfTest(ctx, SelfTestInput{Identifier: "self-test:unit"})
	require.NoError(t, err)
	assert.True(t, out.Passed)
	assert.Equal(t, "self-test:unit", out.Identifier)

	names := make([]string, 0, len(out.Steps))
	for _, s := range out.Steps {
		assert.True(t, s.Passed, "%s: %s", s.Name, s.Detail)
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		"store_ping", "generate", "verify_wrong_code", "verify",
		"verify_reused_code", "resend_during_cooldown", "resend_after_cooldown", "cleanup",
	}, names)

	assert.Zero(t, f.notifier.count(), "self-test never dispatches")

	_, err = f.kv.Get(ctx, "OTP:self-test:unit")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
}

func TestUsecase_SelfTestLeavesRealRecipientAlone(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	live, err := f.uc.Generate(ctx, smsInput("+15550001111"))
	require.NoError(t, err)

	out, err := f.uc.SelfTest(ctx, SelfTestInput{Identifier: " +15550001111 "})
	require.NoError(t, err)
	assert.True(t, out.Passed)
	assert.Equal(t, "self-test:+15550001111", out.Identifier)

	_, err = f.uc.Resend(ctx, smsInput("+15550001111"))
	assert.ErrorIs(t, err, entity.ErrCooldownActive, "live cooldown survives")
	require.NoError(t, f.uc.Verify(ctx, VerifyInput{Identifier: "+15550001111", Code: live.Code}))
}

func TestUsecase_SelfTestStoreDown(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.uc.repoCode = brokenStore{}

	out, err := f.uc.SelfTest(context.Background(), SelfTestInput{})
	require.NoError(t, err)
	assert.False(t, out.Passed)
	assert.Contains(t, out.Identifier, "self-test:")
	assert.False(t, out.Steps[0].Passed)
}

func TestWrongCode(t *testing.T) {
	assert.Equal(t, "123457", wrongCode("123456"))
	assert.Equal(t, "000000", wrongCode("000009"))
}
