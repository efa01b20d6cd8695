package redisserver

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/yndnr/respkv/internal/core/domain"
	"github.com/yndnr/respkv/internal/storage/memory"
	"github.com/yndnr/respkv/internal/telemetry/metric"
)

// Action tells the connection what to do after writing a reply.
type Action int

const (
	ActionContinue Action = iota
	// ActionClose closes the connection once the reply is flushed.
	ActionClose
)

type handlerFunc func(h *CommandHandler, args [][]byte) (Reply, Action)

// commandSpec describes one command. Arity follows the Redis convention:
// it counts the command name, and a negative value -N means "at least N".
type commandSpec struct {
	name  string
	arity int
	fn    handlerFunc
}

func (c *commandSpec) arityOK(argc int) bool {
	n := argc + 1
	if c.arity < 0 {
		return n >= -c.arity
	}
	return n == c.arity
}

var commandTable = map[string]*commandSpec{}

func init() {
	for _, c := range []*commandSpec{
		{"PING", -1, (*CommandHandler).handlePing},
		{"ECHO", 2, (*CommandHandler).handleEcho},
		{"QUIT", -1, (*CommandHandler).handleQuit},
		{"SET", -3, (*CommandHandler).handleSet},
		{"GET", 2, (*CommandHandler).handleGet},
		{"DEL", -2, (*CommandHandler).handleDel},
		{"EXISTS", -2, (*CommandHandler).handleExists},
		{"EXPIRE", 3, (*CommandHandler).handleExpire},
		{"PEXPIRE", 3, (*CommandHandler).handleExpire},
		{"PERSIST", 2, (*CommandHandler).handlePersist},
		{"TTL", 2, (*CommandHandler).handleTTL},
		{"PTTL", 2, (*CommandHandler).handleTTL},
		{"DBSIZE", 1, (*CommandHandler).handleDBSize},
		{"SCAN", -2, (*CommandHandler).handleScan},
		{"FLUSHALL", -1, (*CommandHandler).handleFlushAll},
		{"COMMAND", -1, (*CommandHandler).handleCommand},
	} {
		commandTable[c.name] = c
	}
}

// CommandNames returns the names of all supported commands.
func CommandNames() []string {
	names := make([]string, 0, len(commandTable))
	for name := range commandTable {
		names = append(names, name)
	}
	return names
}

// CommandHandler executes commands against the store. It keeps no state
// between commands and is safe for concurrent use.
type CommandHandler struct {
	store   *memory.Store
	metrics *metric.Registry
	logger  *slog.Logger
}

// NewCommandHandler creates a new CommandHandler. metrics may be nil.
func NewCommandHandler(store *memory.Store, metrics *metric.Registry, logger *slog.Logger) *CommandHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommandHandler{
		store:   store,
		metrics: metrics,
		logger:  logger,
	}
}

// Handle executes one decoded command and returns its reply.
func (h *CommandHandler) Handle(cmd Command) (Reply, Action) {
	name := normalizeCommandName(cmd.Name)
	spec, ok := commandTable[name]
	if !ok {
		h.metrics.ObserveCommand("unknown", "error", 0)
		return ErrorFrom(domain.UnknownCommand(cmd.Name, cmd.Args)), ActionContinue
	}
	if !spec.arityOK(len(cmd.Args)) {
		h.metrics.ObserveCommand(spec.name, "error", 0)
		return ErrorFrom(domain.WrongArity(spec.name)), ActionContinue
	}

	start := time.Now()
	// PEXPIRE and PTTL share handlers with their second-based twins; the
	// command name travels in front of the arguments.
	reply, action := spec.fn(h, withName(spec.name, cmd.Args))

	status := "ok"
	if reply.IsError() {
		status = "error"
	}
	h.metrics.ObserveCommand(spec.name, status, time.Since(start))
	return reply, action
}

// withName prepends the command name so handlers see Redis-style argv.
func withName(name string, args [][]byte) [][]byte {
	argv := make([][]byte, 0, len(args)+1)
	argv = append(argv, []byte(name))
	return append(argv, args...)
}

// PING [message]
func (h *CommandHandler) handlePing(args [][]byte) (Reply, Action) {
	switch len(args) {
	case 1:
		return ReplyPong, ActionContinue
	case 2:
		return Bulk(args[1]), ActionContinue
	default:
		return ErrorFrom(domain.WrongArity("ping")), ActionContinue
	}
}

// ECHO message
func (h *CommandHandler) handleEcho(args [][]byte) (Reply, Action) {
	return Bulk(args[1]), ActionContinue
}

// QUIT
func (h *CommandHandler) handleQuit(_ [][]byte) (Reply, Action) {
	return ReplyOK, ActionClose
}

// SET key value [EX seconds | PX milliseconds]
func (h *CommandHandler) handleSet(args [][]byte) (Reply, Action) {
	key, value := string(args[1]), args[2]

	// Options are checked for shape first, so that a conflict is reported
	// as a syntax error even when a value is also malformed.
	var unit time.Duration
	var raw []byte
	for i := 3; i < len(args); i++ {
		var u time.Duration
		switch strings.ToUpper(string(args[i])) {
		case "EX":
			u = time.Second
		case "PX":
			u = time.Millisecond
		default:
			return ErrorFrom(domain.ErrSyntax), ActionContinue
		}
		if unit != 0 || i+1 >= len(args) {
			return ErrorFrom(domain.ErrSyntax), ActionContinue
		}
		unit, raw = u, args[i+1]
		i++
	}

	if unit == 0 {
		h.store.Set(key, value)
		return ReplyOK, ActionContinue
	}

	ttl, err := parseTTL(raw, unit, false)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidExpire) {
			return ErrorFrom(domain.InvalidExpire("set")), ActionContinue
		}
		return ErrorFrom(err), ActionContinue
	}
	h.store.SetWithTTL(key, value, ttl)
	return ReplyOK, ActionContinue
}

// parseTTL parses a relative expiration expressed in unit. Negative values
// are rejected unless allowNegative is set; values that would overflow the
// millisecond clock are always rejected.
func parseTTL(raw []byte, unit time.Duration, allowNegative bool) (time.Duration, error) {
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, domain.ErrNotInteger
	}
	if n < 0 && !allowNegative {
		return 0, domain.ErrInvalidExpire
	}
	limit := int64(domain.MaxTTL / unit)
	if n > limit || n < -limit {
		return 0, domain.ErrInvalidExpire
	}
	return time.Duration(n) * unit, nil
}

// GET key
func (h *CommandHandler) handleGet(args [][]byte) (Reply, Action) {
	v, ok := h.store.Get(string(args[1]))
	if !ok {
		return ReplyNil, ActionContinue
	}
	return Bulk(v), ActionContinue
}

// DEL key [key ...]
func (h *CommandHandler) handleDel(args [][]byte) (Reply, Action) {
	deleted := 0
	for _, k := range args[1:] {
		if h.store.Delete(string(k)) {
			deleted++
		}
	}
	return Integer(int64(deleted)), ActionContinue
}

// EXISTS key [key ...]
func (h *CommandHandler) handleExists(args [][]byte) (Reply, Action) {
	count := 0
	for _, k := range args[1:] {
		if h.store.Exists(string(k)) {
			count++
		}
	}
	return Integer(int64(count)), ActionContinue
}

// EXPIRE key seconds / PEXPIRE key milliseconds
//
// A non-positive TTL deletes the key.
func (h *CommandHandler) handleExpire(args [][]byte) (Reply, Action) {
	name := string(args[0])
	unit := time.Second
	if name == "PEXPIRE" {
		unit = time.Millisecond
	}

	ttl, err := parseTTL(args[2], unit, true)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidExpire) {
			return ErrorFrom(domain.InvalidExpire(name)), ActionContinue
		}
		return ErrorFrom(err), ActionContinue
	}
	if h.store.Expire(string(args[1]), ttl) {
		return Integer(1), ActionContinue
	}
	return Integer(0), ActionContinue
}

// PERSIST key
func (h *CommandHandler) handlePersist(args [][]byte) (Reply, Action) {
	if h.store.Persist(string(args[1])) {
		return Integer(1), ActionContinue
	}
	return Integer(0), ActionContinue
}

// TTL key / PTTL key
//
// Returns:
//   - -2 if the key does not exist
//   - -1 if the key exists but has no associated expire
//   - the remaining time, in seconds for TTL and milliseconds for PTTL
func (h *CommandHandler) handleTTL(args [][]byte) (Reply, Action) {
	remaining, hasTTL, ok := h.store.TTL(string(args[1]))
	switch {
	case !ok:
		return Integer(-2), ActionContinue
	case !hasTTL:
		return Integer(-1), ActionContinue
	}

	ms := remaining.Milliseconds()
	if string(args[0]) == "PTTL" {
		return Integer(ms), ActionContinue
	}
	return Integer((ms + 500) / 1000), ActionContinue
}

// DBSIZE
func (h *CommandHandler) handleDBSize(_ [][]byte) (Reply, Action) {
	return Integer(int64(h.store.Len())), ActionContinue
}

// SCAN cursor [MATCH pattern] [COUNT count]
func (h *CommandHandler) handleScan(args [][]byte) (Reply, Action) {
	cursor, err := strconv.ParseUint(string(args[1]), 10, 64)
	if err != nil {
		return ErrorFrom(domain.ErrInvalidCursor), ActionContinue
	}

	var pattern string
	count := 10
	for i := 2; i < len(args); i += 2 {
		if i+1 >= len(args) {
			return ErrorFrom(domain.ErrSyntax), ActionContinue
		}
		switch strings.ToUpper(string(args[i])) {
		case "MATCH":
			pattern = string(args[i+1])
		case "COUNT":
			c, err := strconv.Atoi(string(args[i+1]))
			if err != nil {
				return ErrorFrom(domain.ErrNotInteger), ActionContinue
			}
			if c < 1 {
				return ErrorFrom(domain.ErrSyntax), ActionContinue
			}
			count = c
		default:
			return ErrorFrom(domain.ErrSyntax), ActionContinue
		}
	}

	var match func(string) bool
	if pattern != "" && pattern != "*" {
		match = func(key string) bool { return matchGlob(pattern, key) }
	}

	next, keys := h.store.Scan(cursor, count, match)
	elems := make([]Reply, len(keys))
	for i, k := range keys {
		elems[i] = BulkString(k)
	}
	return Array(BulkString(strconv.FormatUint(next, 10)), Array(elems...)), ActionContinue
}

// FLUSHALL [ASYNC | SYNC]
func (h *CommandHandler) handleFlushAll(args [][]byte) (Reply, Action) {
	if len(args) > 2 {
		return ErrorFrom(domain.ErrSyntax), ActionContinue
	}
	if len(args) == 2 {
		switch strings.ToUpper(string(args[1])) {
		case "ASYNC", "SYNC":
		default:
			return ErrorFrom(domain.ErrSyntax), ActionContinue
		}
	}
	h.store.Flush()
	h.logger.Info("store flushed")
	return ReplyOK, ActionContinue
}

// COMMAND [COUNT | DOCS ...]
//
// Only enough is implemented for redis-cli to connect without complaint.
func (h *CommandHandler) handleCommand(args [][]byte) (Reply, Action) {
	if len(args) == 1 {
		return Array(), ActionContinue
	}
	switch strings.ToUpper(string(args[1])) {
	case "COUNT":
		return Integer(int64(len(commandTable))), ActionContinue
	case "DOCS", "INFO":
		return Array(), ActionContinue
	default:
		return ErrorFrom(domain.ErrSyntax), ActionContinue
	}
}
