package rest

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/sarpt/mpv-repeat-player/internal/common"
)

const (
	revisionHeader = "Etag"
)

func checkRevisionIsSame(stateRevision uint64, req *http.Request) bool {
	if len(req.Header[revisionHeader]) != 1 {
		return false
	}

	providedRevision, err := strconv.ParseUint(req.Header[revisionHeader][0], 10, 64)
	return err == nil && providedRevision == stateRevision
}

func setRevisionInResponse(stateRevision uint64, res http.ResponseWriter) {
	res.Header().Add(revisionHeader, fmt.Sprintf("%d", stateRevision))
}

// respondWithRevision responds with 304 when the client already holds the revision,
// and with the payload tagged with the revision otherwise.
func respondWithRevision(res http.ResponseWriter, req *http.Request, stateRevision uint64, payload interface{}) {
	setRevisionInResponse(stateRevision, res)
	if checkRevisionIsSame(stateRevision, req) {
		res.WriteHeader(http.StatusNotModified)

		return
	}

	common.RespondJSON(res, payload)
}
