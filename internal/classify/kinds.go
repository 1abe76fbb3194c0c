package classify

import (
	"path"
	"strings"
)

// Kind is a test kind. Each kind has its own acceptance predicate.
type Kind string

const (
	KindAPI    Kind = "opapi"
	KindHost   Kind = "ophost"
	KindKernel Kind = "opkernel"
)

// Kinds lists the test kinds in bucket enumeration order.
var Kinds = []Kind{KindAPI, KindHost, KindKernel}

// Directory segments that tie a path to a test kind.
const (
	segAPI    = "op_api"
	segHost   = "op_host"
	segTiling = "op_tiling"
	segKernel = "op_kernel"
	segGraph  = "op_graph"
	segConfig = "config"

	apiExamplePrefix = "test_aclnn_"
)

var markerSegments = []string{segAPI, segHost, segTiling, segKernel, segGraph}

var configExts = map[string]bool{
	".json": true,
	".ini":  true,
	".yaml": true,
	".yml":  true,
}

// accepts reports whether the kind's predicate claims p. Paths carrying no
// kind marker (build files, shared headers) are claimed by every kind, except
// that host never claims configuration.
func (k Kind) accepts(p Path) bool {
	if !p.hasDir(markerSegments...) {
		return k != KindHost || !isConfig(p)
	}
	switch k {
	case KindAPI:
		return isAPI(p)
	case KindHost:
		return isHost(p)
	case KindKernel:
		return isKernel(p)
	default:
		return false
	}
}

// isAPI accepts the API tree and API example tests kept in the host tree.
func isAPI(p Path) bool {
	if p.hasDir(segAPI) {
		return true
	}
	return p.hasDir(segHost) && strings.HasPrefix(p.Base(), apiExamplePrefix)
}

func isHost(p Path) bool {
	if !p.hasDir(segHost, segTiling) {
		return false
	}
	if isAPI(p) {
		return false
	}
	return !isConfig(p)
}

func isConfig(p Path) bool {
	if configExts[strings.ToLower(path.Ext(p.Base()))] {
		return true
	}
	return p.hasDir(segConfig)
}

func isKernel(p Path) bool {
	return p.hasDir(segKernel, segGraph)
}
