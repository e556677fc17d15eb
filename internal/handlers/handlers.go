package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/explorer-knowledge/Whatsapp-Finance-Manager-Bot/internal/actions"
	"github.com/explorer-knowledge/Whatsapp-Finance-Manager-Bot/internal/ai"
	"github.com/explorer-knowledge/Whatsapp-Finance-Manager-Bot/internal/database"
)

// Handler owns the webhook endpoints and the per-user serialization that
// keeps conversation history consistent under concurrent deliveries.
type Handler struct {
	users    *database.Users
	registry *database.Registry
	oracle   ai.Oracle // nil enables the degraded demo mode
	prompts  *ai.PromptBuilder
	executor *actions.Executor

	now func() time.Time

	// One mutex per phone: messages from the same user are processed in
	// arrival order, different users proceed in parallel.
	userLocks sync.Map
}

func New(users *database.Users, registry *database.Registry, oracle ai.Oracle, prompts *ai.PromptBuilder) *Handler {
	return &Handler{
		users:    users,
		registry: registry,
		oracle:   oracle,
		prompts:  prompts,
		executor: actions.NewExecutor(registry, users),
		now:      time.Now,
	}
}

func (h *Handler) lockUser(phone string) func() {
	mu, _ := h.userLocks.LoadOrStore(phone, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// Health handles GET /.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("Finance Bot - OK"))
}
