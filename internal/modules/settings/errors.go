package settings

import (
	"net/http"

	"github.com/delordemm1/go-sprints-api/internal/domainerr"
)

var (
	ErrUnknownKey = domainerr.New("ErrUnknownSettingKey", http.StatusBadRequest, "urn:problem:settings/err-unknown-key", "unknown setting key")
	ErrInternal   = domainerr.New("ErrInternal", http.StatusInternalServerError, "urn:problem:settings/err-internal", "internal server error")
)
