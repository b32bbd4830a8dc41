package feedsim

import "time"

// HTTP status code constants.
const (
	StatusOK       = 200
	StatusNotFound = 404
)

// Server timing constants.
const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Feed pagination constants.
const (
	DefaultPageMax = 20
	MaxPageMax     = 200
)

// Timeline composition constants.
const (
	levelShare      = 4  // one in N runs lands on an individual-level board
	coopShare       = 12 // one in N runs has a second player
	guestShare      = 10 // one in N pool members is an unregistered guest
	hiddenDateShare = 16 // one in N runs hides its date on board rows
)

// Constants for pace cases.
const (
	caseMidPack    = 0
	caseMidPackToo = 1
	caseBackOfPack = 2
	caseNearMiss   = 3
	caseSmallBreak = 4
	caseBigBreak   = 5
	caseTie        = 6
	caseWildcard   = 7
	caseCount      = 8
)

// Constants for pace multiplier ranges, relative to the bracket's best.
const (
	baseDurationMin   = 45.0
	baseDurationRange = 3555.0
	midPackMin        = 1.05
	midPackRange      = 0.25
	backOfPackMin     = 1.30
	backOfPackRange   = 0.70
	nearMissMin       = 1.001
	nearMissRange     = 0.049
	smallBreakMin     = 0.970
	smallBreakRange   = 0.029
	bigBreakMin       = 0.850
	bigBreakRange     = 0.120
	wildcardMin       = 0.90
	wildcardRange     = 0.60
)
