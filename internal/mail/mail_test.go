package mail

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"dymm/internal/auth"
	"dymm/internal/jobs"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCodes(t *testing.T) (*RedisCodes, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &RedisCodes{Client: client}, mr
}

func TestCodesIssueCheck(t *testing.T) {
	codes, mr := newCodes(t)
	ctx := context.Background()

	code, err := codes.Issue(ctx, "Someone@Example.com")
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.Equal(t, CodeTTL, mr.TTL("dymm:verify:someone@example.com"))

	ok, err := codes.Check(ctx, "someone@example.com", "not-it")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = codes.Check(ctx, "someone@example.com", code)
	require.NoError(t, err)
	assert.True(t, ok)

	// consumed
	ok, err = codes.Check(ctx, "someone@example.com", code)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCodesExpire(t *testing.T) {
	codes, mr := newCodes(t)
	ctx := context.Background()

	code, err := codes.Issue(ctx, "a@b.c")
	require.NoError(t, err)
	mr.FastForward(CodeTTL + time.Second)

	ok, err := codes.Check(ctx, "a@b.c", code)
	require.NoError(t, err)
	assert.False(t, ok)
}

type captureSender struct{ sent []Message }

func (s *captureSender) Send(ctx context.Context, m Message) error {
	s.sent = append(s.sent, m)
	return nil
}

func mailJob(t *testing.T, typ string, p jobs.MailPayload) *jobs.Job {
	t.Helper()
	b, err := json.Marshal(p)
	require.NoError(t, err)
	return &jobs.Job{ID: 1, Type: typ, Payload: b, MaxAttempts: 8}
}

func TestDispatchConfirm(t *testing.T) {
	s := &captureSender{}
	j := auth.NewJWT("secret", "mail")
	d := &Dispatcher{Sender: s, JWT: j, PublicURL: "https://dymm.test"}

	err := d.sendConfirm(context.Background(), mailJob(t, jobs.TypeMailConfirm, jobs.MailPayload{AvatarID: 3, Email: "a@b.c"}))
	require.NoError(t, err)
	require.Len(t, s.sent, 1)
	assert.Equal(t, "a@b.c", s.sent[0].To)

	prefix := "https://dymm.test/api/mail/conf/"
	i := strings.Index(s.sent[0].Text, prefix)
	require.GreaterOrEqual(t, i, 0)
	token := strings.Fields(s.sent[0].Text[i+len(prefix):])[0]

	claims, err := j.Verify(token, auth.KindMail)
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", claims.Email)
}

func TestDispatchRejectsBadPayload(t *testing.T) {
	d := &Dispatcher{Sender: &captureSender{}, JWT: auth.NewJWT("s", "")}

	job := &jobs.Job{ID: 1, Type: jobs.TypeMailConfirm, Payload: []byte("{"), MaxAttempts: 8}
	err := d.sendConfirm(context.Background(), job)
	require.Error(t, err)

	err = d.sendCode(context.Background(), mailJob(t, jobs.TypeMailVerifyCode, jobs.MailPayload{Email: "a@b.c"}))
	require.Error(t, err)
}

func TestDispatchCodeThroughWorker(t *testing.T) {
	s := &captureSender{}
	d := &Dispatcher{Sender: s, JWT: auth.NewJWT("s", "")}
	w := &jobs.Worker{ID: "t", Queue: &oneJob{job: mailJob(t, jobs.TypeMailVerifyCode, jobs.MailPayload{Email: "a@b.c", Code: "123456"})}}
	d.Register(w)

	assert.True(t, w.Tick(context.Background()))
	require.Len(t, s.sent, 1)
	assert.Contains(t, s.sent[0].HTML, "123456")
}

type oneJob struct {
	job  *jobs.Job
	done bool
}

func (q *oneJob) Claim(ctx context.Context, workerID string) (*jobs.Job, error) {
	if q.job == nil {
		return nil, nil
	}
	j := q.job
	q.job = nil
	return j, nil
}
func (q *oneJob) MarkDone(ctx context.Context, id uint64) error { q.done = true; return nil }
func (q *oneJob) MarkFailed(ctx context.Context, id uint64, errMsg string) error {
	return nil
}
func (q *oneJob) RetryLater(ctx context.Context, id uint64, attempts int, runAt time.Time, errMsg string) error {
	return nil
}

func TestTemplatesEscape(t *testing.T) {
	page, err := ResultPage("<script>x</script>")
	require.NoError(t, err)
	assert.NotContains(t, string(page), "<script>")

	m, err := ConfirmMessage("a@b.c", "https://x/y", 10)
	require.NoError(t, err)
	assert.Contains(t, m.HTML, `href="https://x/y"`)
}
