package command

import (
	"context"
	"strings"

	"github.com/feirinha-uesb/storefront/internal/domain"
	"github.com/feirinha-uesb/storefront/internal/storefront/state"
	"github.com/feirinha-uesb/storefront/internal/storefront/usecase"
)

// PostCommentCommand represents the command to comment on a product
type PostCommentCommand struct {
	Session     *state.Session
	ProductCode int
	Text        string
}

// PostCommentHandler handles post comment command
type PostCommentHandler struct {
	comments usecase.Comments
}

// NewPostCommentHandler creates a new post comment handler
func NewPostCommentHandler(comments usecase.Comments) *PostCommentHandler {
	return &PostCommentHandler{comments: comments}
}

// Handle posts the comment as the logged user
func (h *PostCommentHandler) Handle(ctx context.Context, cmd PostCommentCommand) (*domain.BackendComment, error) {
	if cmd.ProductCode <= 0 {
		return nil, usecase.Invalid("code", "is required")
	}
	text := strings.TrimSpace(cmd.Text)
	if text == "" {
		return nil, usecase.Invalid("text", "is required")
	}

	author, err := cmd.Session.Auth.ResolveUserID(ctx)
	if err != nil {
		return nil, err
	}
	if !cmd.Session.Auth.IsLogged() || author == "" {
		return nil, usecase.ErrNotLoggedIn
	}

	return h.comments.PostComment(ctx, cmd.ProductCode, author, text)
}
