package content

import (
	"net/http"

	"github.com/delordemm1/go-sprints-api/internal/domainerr"
)

var (
	ErrClassNotFound = domainerr.New("ErrClassNotFound", http.StatusNotFound, "urn:problem:content/err-class-not-found", "class not found")
	ErrInternal      = domainerr.New("ErrInternal", http.StatusInternalServerError, "urn:problem:content/err-internal", "internal server error")
)
