package attempt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"loginprobe/internal/endpoint"
	"loginprobe/internal/metrics"
	"loginprobe/internal/tokenstore"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	successMessage    = "Login succeeded!"
	tokenReceivedNote = " Token received"
	apiErrorPrefix    = "Error: "
	defaultAPIError   = "Invalid credentials"
	connectionPrefix  = "Connection error. "
	unreachableHint   = "Possible causes:\n" +
		"1. The server is not running\n" +
		"2. CORS error\n" +
		"3. Wrong URL\n\n" +
		"Check the loginprobe log for more details."
)

var ErrAttemptInFlight = errors.New("a login attempt is already in flight")

// Policy decides what happens to a submission while another is in flight.
type Policy string

const (
	// PolicyRace lets attempts overlap; whichever resolves last owns the State.
	PolicyRace Policy = "race"
	// PolicyDrop rejects submissions until the current attempt resolves.
	PolicyDrop Policy = "drop"
)

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyRace, PolicyDrop:
		return p, nil
	case "":
		return PolicyRace, nil
	}
	return "", fmt.Errorf("unknown attempt policy %q", s)
}

type Config struct {
	// Client defaults to a client without cookie jar. A zero Timeout means a
	// hung endpoint keeps the attempt loading.
	Client   *http.Client
	Timeout  time.Duration
	Tokens   tokenstore.Store
	TokenKey string
	Policy   Policy
	// Origin, when set, is sent as the Origin header and the response must
	// allow it, the way a browser would require.
	Origin string
}

type Controller struct {
	client   *http.Client
	store    *Store
	tokens   tokenstore.Store
	tokenKey string
	policy   Policy
	origin   string

	mu       sync.Mutex
	inFlight int
}

func NewController(store *Store, cfg Config) *Controller {
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	tokens := cfg.Tokens
	if tokens == nil {
		tokens = tokenstore.NewMemory()
	}
	key := cfg.TokenKey
	if key == "" {
		key = "auth_token"
	}
	policy := cfg.Policy
	if policy == "" {
		policy = PolicyRace
	}
	return &Controller{
		client:   client,
		store:    store,
		tokens:   tokens,
		tokenKey: key,
		policy:   policy,
		origin:   strings.TrimSpace(cfg.Origin),
	}
}

// Attempt is a handle on one submission.
type Attempt struct {
	id    string
	done  chan struct{}
	final State
}

func (a *Attempt) ID() string {
	return a.id
}

func (a *Attempt) Done() <-chan struct{} {
	return a.done
}

// State returns the terminal state of this attempt. Only valid after Done.
func (a *Attempt) State() State {
	select {
	case <-a.done:
		return a.final
	default:
		return State{AttemptID: a.id, Loading: true}
	}
}

// Submit resets the State and starts the exchange in the background. It only
// fails when PolicyDrop rejects the submission.
func (c *Controller) Submit(ctx context.Context, creds Credentials, ep endpoint.Endpoint) (*Attempt, error) {
	c.mu.Lock()
	if c.policy == PolicyDrop && c.inFlight > 0 {
		c.mu.Unlock()
		metrics.AttemptDropped()
		log.Printf("login dropped: endpoint=%s reason=in-flight", ep.Value)
		return nil, ErrAttemptInFlight
	}
	c.inFlight++
	a := &Attempt{id: uuid.NewString(), done: make(chan struct{})}
	started := time.Now()
	c.store.replace(State{
		AttemptID: a.id,
		Endpoint:  ep.Value,
		Loading:   true,
		StartedAt: started,
	})
	c.mu.Unlock()

	metrics.AttemptStarted()
	go c.run(context.WithoutCancel(ctx), a, creds, ep, started)
	return a, nil
}

func (c *Controller) run(ctx context.Context, a *Attempt, creds Credentials, ep endpoint.Endpoint, started time.Time) {
	st := State{AttemptID: a.id, Endpoint: ep.Value, StartedAt: started}
	outcome := metrics.OutcomeTransportError

	defer func() {
		if r := recover(); r != nil {
			st = c.failed(st, errors.Errorf("login attempt panicked: %v", r))
			outcome = metrics.OutcomeTransportError
		}
		st.Loading = false
		st.FinishedAt = time.Now()

		c.mu.Lock()
		c.inFlight--
		c.store.replace(st)
		c.mu.Unlock()

		metrics.AttemptFinished(outcome, st.FinishedAt.Sub(started))
		a.final = st
		close(a.done)
	}()

	exch, reply, err := c.exchange(ctx, a.id, creds, ep)
	if err != nil {
		st = c.failed(st, err)
		return
	}
	st.Result = &ResponseSnapshot{Exchange: exch}

	if exch.Status < 200 || exch.Status > 299 {
		msg := jsonText(reply.Message)
		if msg == "" {
			msg = defaultAPIError
		}
		st.ErrorMessage = apiErrorPrefix + msg
		outcome = metrics.OutcomeAPIError
		log.Printf("login rejected: id=%s status=%d message=%q", a.id, exch.Status, msg)
		return
	}

	st.SuccessMessage = successMessage
	if token := jsonText(reply.Token); token != "" {
		st.SuccessMessage += tokenReceivedNote
		c.persistToken(ctx, a.id, token)
	}
	if reply.User != nil {
		log.Printf("login user: id=%s user_id=%d email=%s nombre=%q", a.id, reply.User.ID, reply.User.Email, reply.User.Nombre)
	}
	outcome = metrics.OutcomeSuccess
}

func (c *Controller) exchange(ctx context.Context, id string, creds Credentials, ep endpoint.Endpoint) (*Exchange, loginReply, error) {
	url := ep.LoginURL()
	payload, err := json.Marshal(loginRequest{Email: creds.Email, Password: creds.Password})
	if err != nil {
		return nil, loginReply{}, errors.Wrap(err, "encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, loginReply{}, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.origin != "" {
		req.Header.Set("Origin", c.origin)
	}

	log.Printf("login request: id=%s method=POST url=%s email=%s password=***", id, url, creds.Email)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, loginReply{}, errors.Wrap(err, "send request")
	}
	defer resp.Body.Close()

	headers := flattenHeaders(resp.Header)
	log.Printf("login response: id=%s status=%d headers=%v", id, resp.StatusCode, headers)

	if err := c.checkOrigin(resp.Header); err != nil {
		return nil, loginReply{}, errors.WithStack(err)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, loginReply{}, errors.Wrap(err, "read response body")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, loginReply{}, errors.WithStack(errEmptyBody)
	}
	var data json.RawMessage
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, loginReply{}, errors.WithStack(&decodeError{err: err})
	}
	log.Printf("login response data: id=%s bytes=%d", id, len(body))

	// Bodies that are valid JSON but not objects leave the reply empty; a
	// mistyped user still lets token and message through.
	var reply loginReply
	_ = json.Unmarshal(body, &reply)

	return &Exchange{
		Status:     resp.StatusCode,
		StatusText: statusText(resp),
		Headers:    headers,
		Data:       data,
	}, reply, nil
}

func (c *Controller) checkOrigin(h http.Header) error {
	if c.origin == "" {
		return nil
	}
	allowed := strings.TrimSpace(h.Get("Access-Control-Allow-Origin"))
	if allowed == "*" || allowed == c.origin {
		return nil
	}
	return &corsError{origin: c.origin, allowed: allowed}
}

func (c *Controller) failed(st State, err error) State {
	kind := Classify(err)
	metrics.TransportFailure(string(kind))
	log.Printf("login failed: id=%s endpoint=%s kind=%s err=%v", st.AttemptID, st.Endpoint, kind, err)

	msg := connectionPrefix
	if kind.Unreachable() {
		msg += unreachableHint
	} else {
		msg += err.Error()
	}
	st.ErrorMessage = msg
	st.SuccessMessage = ""
	st.Result = &ResponseSnapshot{Failure: &Failure{
		Kind:    kind,
		Name:    failureName(kind, err),
		Message: err.Error(),
		Stack:   fmt.Sprintf("%+v", err),
	}}
	return st
}

func failureName(kind Kind, err error) string {
	if name := kind.errorName(); name != "" {
		return name
	}
	return strings.TrimPrefix(fmt.Sprintf("%T", errors.Cause(err)), "*")
}

// jsonText renders a loosely typed reply field: strings as-is, arrays joined
// with ",", anything else as its JSON text. null, false, 0 and "" are absent.
func jsonText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	switch string(raw) {
	case "", "null", "false", "0", `""`:
		return ""
	}
	var items []json.RawMessage
	if json.Unmarshal(raw, &items) == nil {
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = scalarText(item)
		}
		return strings.Join(parts, ",")
	}
	return scalarText(raw)
}

func scalarText(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	if string(bytes.TrimSpace(raw)) == "null" {
		return ""
	}
	return string(raw)
}

func (c *Controller) persistToken(ctx context.Context, id, token string) {
	err := c.tokens.Put(ctx, c.tokenKey, token)
	metrics.TokenWrite(err)
	if err != nil {
		log.Printf("token store failed: id=%s key=%s err=%v", id, c.tokenKey, err)
		return
	}
	info := tokenstore.Inspect(token, time.Now())
	log.Printf("token stored: id=%s key=%s jwt=%t subject=%q expired=%t", id, c.tokenKey, info.JWT, info.Subject, info.Expired)
}

// flattenHeaders mirrors the fetch Headers view: lower-case names, repeated
// values joined with ", ".
func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		out[strings.ToLower(name)] = strings.Join(values, ", ")
	}
	return out
}

func statusText(resp *http.Response) string {
	if text, ok := strings.CutPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" "); ok {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
