package gateway

import (
	"net/http"

	"authgate/internal/pipeline"
)

// StatusFor maps a verdict to its fixed external HTTP status. Every failure
// kind shares the broken-gateway status so the calling proxy can tell
// "gateway broke" (502) from "access denied" (401/403).
func StatusFor(res pipeline.Result) int {
	switch res.Verdict {
	case pipeline.Allow:
		return http.StatusOK
	case pipeline.Deny:
		return http.StatusForbidden
	case pipeline.Unauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusBadGateway
	}
}

// writeVerdict writes a pipeline result: status per StatusFor, the identity
// header on allow, and no body by default. Diagnostic detail stays in the
// log unless debug responses are enabled.
func (g *Gateway) writeVerdict(w http.ResponseWriter, res pipeline.Result) {
	if res.Verdict == pipeline.Allow && res.Subject != "" {
		w.Header().Set(RemoteUserHeader, res.Subject)
	}

	status := StatusFor(res)
	w.WriteHeader(status)

	if g.debug && res.Verdict == pipeline.Error {
		w.Write([]byte(res.Kind.String() + "\n"))
	}
}

// reject writes the broken-gateway status for failures that occur before the
// pipeline runs, keeping the same debug-body behavior.
func (g *Gateway) reject(w http.ResponseWriter, diagnostic string) {
	w.WriteHeader(http.StatusBadGateway)
	if g.debug {
		w.Write([]byte(diagnostic + "\n"))
	}
}
