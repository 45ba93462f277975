package server

import (
	"net/http"

	"github.com/Zanvi/lacasabarber/internal/chat"
	"github.com/Zanvi/lacasabarber/internal/storage/models"
	"github.com/Zanvi/lacasabarber/pkg/errors"
)

type sendMessageRequest struct {
	Text string `json:"text"`
}

type messagesResponse struct {
	Messages []chat.Message `json:"messages"`
	Busy     bool           `json:"busy"`
}

// currentUser восстанавливает пользователя по токену
func (s *Server) currentUser(r *http.Request) models.User {
	claims, _ := ClaimsFromContext(r.Context())
	if u, ok := s.users.GetUser(claims.UserID()); ok {
		return u
	}
	return models.User{ID: claims.UserID(), Name: claims.Name, Role: claims.Role}
}

func (s *Server) handleOpenChat(w http.ResponseWriter, r *http.Request) {
	session, err := s.chats.Open(r.Context(), s.currentUser(r))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, messagesResponse{Messages: session.Messages(), Busy: session.Busy()})
}

func (s *Server) handleCloseChat(w http.ResponseWriter, r *http.Request) {
	s.chats.Close(s.currentUser(r).ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChatMessages(w http.ResponseWriter, r *http.Request) {
	session, ok := s.chats.Get(s.currentUser(r).ID)
	if !ok {
		writeAppError(w, errors.ErrSessionNotFound)
		return
	}
	writeJSON(w, http.StatusOK, messagesResponse{Messages: session.Messages(), Busy: session.Busy()})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	session, err := s.chats.GetOrOpen(r.Context(), s.currentUser(r))
	if err != nil {
		writeAppError(w, err)
		return
	}

	reply, err := session.Send(r.Context(), req.Text)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}
