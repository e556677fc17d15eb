package handlers

import (
	"encoding/xml"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/explorer-knowledge/Whatsapp-Finance-Manager-Bot/internal/ai"
	"github.com/explorer-knowledge/Whatsapp-Finance-Manager-Bot/internal/database"
	"github.com/explorer-knowledge/Whatsapp-Finance-Manager-Bot/internal/format"
	"github.com/explorer-knowledge/Whatsapp-Finance-Manager-Bot/internal/logger"
	"github.com/explorer-knowledge/Whatsapp-Finance-Manager-Bot/internal/models"
)

const (
	welcomeReply       = "Welcome to your personal finance assistant! Before we start, please accept the privacy policy by replying YES. Your data stays in your own private ledger and can be deleted any time."
	privacyNagReply    = "Please reply YES to accept the privacy policy before we continue."
	privacyThanksReply = "Thanks! You can now track your finances. Try something like \"500 spent on chai\" or \"show this month's summary\"."
	oracleDownReply    = "Sorry, the assistant is unavailable right now. Please try again in a moment."
	notUnderstoodReply = "Sorry, I could not understand that. Please try rephrasing."
	demoReply          = "Demo mode: no AI key configured. Set GEMINI_API_KEY to enable the assistant."
)

// privacyAccepts are the replies treated as accepting the privacy policy.
var privacyAccepts = map[string]bool{
	"yes": true, "y": true, "accept": true, "haan": true, "ha": true,
}

// twimlResponse is the Twilio messaging reply envelope.
type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

// Webhook handles POST /webhook: one inbound WhatsApp message in, one reply
// out, processed end-to-end before the sender's next message.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	body := strings.TrimSpace(r.FormValue("Body"))
	phone := normalizePhone(r.FormValue("From"))
	if phone == "" {
		http.Error(w, "Missing sender", http.StatusBadRequest)
		return
	}

	unlock := h.lockUser(phone)
	defer unlock()

	log := logger.L.With("phone", phone)
	log.Info("Inbound message", "length", len(body))

	respondTwiML(w, h.handleMessage(r, phone, body, log))
}

func (h *Handler) handleMessage(r *http.Request, phone, body string, log *slog.Logger) string {
	user, err := h.users.Get(phone)
	if errors.Is(err, database.ErrUserNotFound) {
		if _, err := h.users.Create(phone); err != nil {
			log.Error("Failed to create user", "error", err)
			return oracleDownReply
		}
		return welcomeReply
	}
	if err != nil {
		log.Error("Failed to load user", "error", err)
		return oracleDownReply
	}

	if !user.PrivacyAccepted {
		if privacyAccepts[strings.ToLower(body)] {
			if err := h.users.SetPrivacyAccepted(phone, true); err != nil {
				log.Error("Failed to record privacy acceptance", "error", err)
				return oracleDownReply
			}
			return privacyThanksReply
		}
		return privacyNagReply
	}

	store, err := h.registry.Store(phone)
	if err != nil {
		log.Error("Failed to open ledger", "error", err)
		return oracleDownReply
	}
	if err := store.AppendConversation(models.RoleUser, body); err != nil {
		log.Error("Failed to store user turn", "error", err)
	}

	if h.oracle == nil {
		return h.finishTurn(phone, demoReply, log)
	}

	now := h.now()
	systemPrompt, err := h.prompts.Build(now, h.users.Name(phone), store)
	if err != nil {
		log.Error("Failed to build prompt", "error", err)
		return oracleDownReply
	}
	fullPrompt := systemPrompt + "\nUSER MESSAGE: " + body + "\nRespond in JSON."

	raw, err := h.oracle.Generate(r.Context(), fullPrompt)
	if err != nil {
		// No actions are derived from a failed oracle call.
		log.Error("Oracle call failed", "error", err)
		return h.finishTurn(phone, oracleDownReply, log)
	}

	reply, err := ai.ParseReply(raw)
	if err != nil {
		log.Error("Unparseable oracle output", "error", err)
		return h.finishTurn(phone, notUnderstoodReply, log)
	}

	results := h.executor.Execute(phone, reply.Actions, now)

	text := reply.ResponseText
	if text == "" {
		text = "Done!"
	}
	if formatted := format.Results(results); formatted != "" {
		text += "\n" + strings.TrimRight(formatted, "\n")
	}
	return h.finishTurn(phone, text, log)
}

// finishTurn records the assistant's reply in the conversation history. The
// store is re-acquired because a data-deletion action may have replaced it
// mid-batch.
func (h *Handler) finishTurn(phone, text string, log *slog.Logger) string {
	store, err := h.registry.Store(phone)
	if err != nil {
		log.Error("Failed to reopen ledger for assistant turn", "error", err)
		return text
	}
	if err := store.AppendConversation(models.RoleAssistant, text); err != nil {
		log.Error("Failed to store assistant turn", "error", err)
	}
	return text
}

// normalizePhone strips the transport prefix from a Twilio WhatsApp sender
// id ("whatsapp:+919876543210" becomes "919876543210").
func normalizePhone(from string) string {
	phone := strings.TrimPrefix(strings.TrimSpace(from), "whatsapp:")
	return strings.TrimPrefix(phone, "+")
}

func respondTwiML(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/xml")
	w.Write([]byte(xml.Header))
	if err := xml.NewEncoder(w).Encode(twimlResponse{Message: message}); err != nil {
		logger.L.Error("Failed to encode TwiML response", "error", err)
	}
}
