// Package agentserver implements the long-lived agent server (C7): a
// single cooperative serialization unit per agent instance wrapping the
// executor loop (C6), exposing start/cast/call client operations and
// suspending the active worker for human-in-the-loop input.
package agentserver

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/agentcore/agentcore/internal/agent"
	"github.com/agentcore/agentcore/internal/allowlist"
	"github.com/agentcore/agentcore/internal/descriptor"
)

const humanModule = "agentserver/human"

// DefaultHumanInputTimeout bounds how long a suspended worker waits for a
// respond message before AwaitHumanInput gives up, distinct from (and
// ordinarily much larger than) any single sandbox evaluation's timeout --
// suspension for an operator's answer is deliberate, not a hung program.
const DefaultHumanInputTimeout = 10 * time.Minute

type msgKind int

const (
	msgRunInitial msgKind = iota
	msgContinue
	msgRespond
)

type message struct {
	kind    msgKind
	text    string
	replyCh chan callOutcome
}

type callOutcome struct {
	result agent.TerminalResult
	ectx   agent.Context
	err    error
}

type humanRequest struct {
	question string
	kind     string
	reply    chan string
}

// Server is one agent instance's actor: a single goroutine (run) serializes
// every mutation of its Executor Context; long-running executor
// activations are delegated to a spawned worker so the actor keeps
// draining its inbox -- notably, a respond message for a suspended worker.
type Server struct {
	loop *agent.Loop
	opts agent.RunOptions

	humanTimeout time.Duration

	inbox         chan message
	humanRequests chan humanRequest

	ectx    agent.Context
	emitter *agent.EventEmitter
}

// Handle is the client-visible result of Start: the server itself, plus a
// channel the caller may optionally read the initial task's terminal
// result from.
type Handle struct {
	*Server
	Initial <-chan agent.TerminalResult
}

// NewServer constructs a Server for agentDescriptor, augmenting it with a
// synthetic "Human" tool whose single function suspends the calling
// worker and resumes it with whatever value a later Respond call supplies.
func NewServer(agentDescriptor descriptor.Agent, opts agent.RunOptions, humanTimeout time.Duration) (*Server, error) {
	if humanTimeout <= 0 {
		humanTimeout = DefaultHumanInputTimeout
	}

	s := &Server{
		opts:          opts,
		humanTimeout:  humanTimeout,
		inbox:         make(chan message, 256),
		humanRequests: make(chan humanRequest),
	}
	if s.opts.HumanInput == nil {
		s.opts.HumanInput = s
	}
	s.emitter = agent.NewEventEmitter(uuid.NewString(), opts.Sink)

	augmented, symbols := withHumanInputTool(agentDescriptor, s)
	loop, err := agent.NewLoop(augmented, symbols, nil)
	if err != nil {
		return nil, fmt.Errorf("construct loop: %w", err)
	}
	s.loop = loop
	return s, nil
}

func withHumanInputTool(a descriptor.Agent, s *Server) (descriptor.Agent, map[string]map[string]reflect.Value) {
	tool := descriptor.Tool{
		Name:      "Human",
		Moduledoc: "Suspends the current activation to ask the operator a question.",
		Functions: []descriptor.FunctionDoc{
			{Name: "input", Params: []string{"question", "kind"},
				Doc: "Blocks until the operator responds; kind labels the expected answer shape."},
		},
		AllowlistContribution: map[string]allowlist.Permission{humanModule: allowlist.PermAll()},
		Aliases:               func(map[string]any) map[string]string { return map[string]string{"Human": humanModule} },
	}
	a.Tools = append(append([]descriptor.Tool(nil), a.Tools...), tool)

	symbols := map[string]map[string]reflect.Value{
		humanModule: {
			"input": reflect.ValueOf(func(question, kind string) string {
				// Routed through opts.HumanInput rather than s directly, so a
				// caller that supplies its own HumanInputProvider in
				// RunOptions can still observe/intercept the suspension.
				value, _ := s.opts.HumanInput.Await(question, kind)
				return value
			}),
		},
	}
	return a, symbols
}

// Start is the start(agent, initial_task, opts) client operation of §4.7:
// it spawns the actor and enqueues an internal run_initial message. The
// returned Handle's Initial channel yields the first activation's terminal
// result once available; callers that only want to interact afterward via
// Cast/Call can ignore it.
func Start(agentDescriptor descriptor.Agent, initialTask string, opts agent.RunOptions, humanTimeout time.Duration) (*Handle, error) {
	s, err := NewServer(agentDescriptor, opts, humanTimeout)
	if err != nil {
		return nil, err
	}

	go s.run()

	reply := make(chan callOutcome, 1)
	s.inbox <- message{kind: msgRunInitial, text: initialTask, replyCh: reply}

	initial := make(chan agent.TerminalResult, 1)
	go func() {
		out := <-reply
		initial <- out.result
	}()

	return &Handle{Server: s, Initial: initial}, nil
}

// Cast is the fire-and-forget client operation of §4.7.
func (s *Server) Cast(text string) {
	s.inbox <- message{kind: msgContinue, text: text}
}

// Call is the blocking client operation of §4.7: the reply arrives once
// the executor reaches a terminal state for this message.
func (s *Server) Call(text string, timeout time.Duration) (agent.TerminalResult, error) {
	reply := make(chan callOutcome, 1)
	s.inbox <- message{kind: msgContinue, text: text, replyCh: reply}

	select {
	case out := <-reply:
		return out.result, out.err
	case <-time.After(timeout):
		return agent.TerminalResult{}, fmt.Errorf("call timed out after %s", timeout)
	}
}

// Respond delivers a human-input response. It returns agent.ErrNoPendingRequest
// if no human_input_waiter is outstanding, per §4.7's explicit contract.
func (s *Server) Respond(value string, timeout time.Duration) error {
	reply := make(chan callOutcome, 1)
	s.inbox <- message{kind: msgRespond, text: value, replyCh: reply}

	select {
	case out := <-reply:
		return out.err
	case <-time.After(timeout):
		return fmt.Errorf("respond timed out after %s", timeout)
	}
}

// Await implements agent.HumanInputProvider: it is the default value of
// opts.HumanInput, invoked from inside a sandbox evaluation (via the
// synthetic Human.input symbol) to suspend the calling worker until a
// Respond call resumes it.
func (s *Server) Await(question, kind string) (string, error) {
	reply := make(chan string, 1)
	s.humanRequests <- humanRequest{question: question, kind: kind, reply: reply}

	select {
	case value := <-reply:
		return value, nil
	case <-time.After(s.humanTimeout):
		return "", fmt.Errorf("human input timed out after %s", s.humanTimeout)
	}
}

// Close stops the actor. Pending in-flight calls will time out rather than
// receive a reply; callers should quiesce activity before closing.
func (s *Server) Close() {
	close(s.inbox)
}

// run is the single cooperative serialization unit: it is the only
// goroutine that ever mutates s.ectx or the human_input_waiter channel.
func (s *Server) run() {
	var (
		workerDone  chan callOutcome
		activeReply chan callOutcome
		waiter      chan string
		queue       []message
	)

	for {
		select {
		case msg, ok := <-s.inbox:
			if !ok {
				return
			}

			if msg.kind == msgRespond {
				if waiter == nil {
					if msg.replyCh != nil {
						msg.replyCh <- callOutcome{err: agent.ErrNoPendingRequest}
					}
					continue
				}
				waiter <- msg.text
				waiter = nil
				s.emitter.HumanInputReceived(context.Background())
				if s.opts.Metrics != nil {
					s.opts.Metrics.SetHumanInputWaiting(false)
				}
				if msg.replyCh != nil {
					msg.replyCh <- callOutcome{}
				}
				continue
			}

			if workerDone != nil {
				queue = append(queue, msg)
				s.setQueueDepth(len(queue))
				continue
			}
			workerDone = make(chan callOutcome, 1)
			activeReply = msg.replyCh
			s.spawnWorker(msg, workerDone)

		case req := <-s.humanRequests:
			if waiter != nil {
				// At most one waiter outstanding (§4.7's concurrency
				// invariant): only one worker is ever active, and a
				// worker issues at most one outstanding request at a
				// time, so this path is unreachable in practice.
				req.reply <- ""
				continue
			}
			waiter = req.reply
			s.emitter.HumanInputRequired(context.Background(), req.question, req.kind)
			if s.opts.Metrics != nil {
				s.opts.Metrics.SetHumanInputWaiting(true)
			}

		case out := <-workerDone:
			s.ectx = out.ectx
			if activeReply != nil {
				activeReply <- out
			}
			workerDone = nil
			activeReply = nil

			if len(queue) > 0 {
				next := queue[0]
				queue = queue[1:]
				s.setQueueDepth(len(queue))
				workerDone = make(chan callOutcome, 1)
				activeReply = next.replyCh
				s.spawnWorker(next, workerDone)
			}
		}
	}
}

// setQueueDepth reports the current backlog behind the active worker. A nil
// Metrics leaves this a no-op.
func (s *Server) setQueueDepth(depth int) {
	if s.opts.Metrics != nil {
		s.opts.Metrics.SetAgentServerQueueDepth(depth)
	}
}

func (s *Server) spawnWorker(msg message, done chan callOutcome) {
	ectx := s.ectx
	go func() {
		var result agent.TerminalResult
		var updated agent.Context
		if msg.kind == msgRunInitial {
			result, updated = s.loop.Run(context.Background(), msg.text, s.opts)
		} else {
			result, updated = s.loop.Continue(context.Background(), ectx, msg.text, s.opts)
		}
		done <- callOutcome{result: result, ectx: updated}
	}()
}
