package domain

// dnrRung maps each capped ladder rung to its retry_count value.
var dnrRung = map[Status]int{
	StatusDNR1: 1,
	StatusDNR2: 2,
	StatusDNR3: 3,
}

// terminalStatuses deactivate the lead on entry.
var terminalStatuses = map[Status]bool{
	StatusDNR4:          true,
	StatusNotInterested: true,
	StatusDenied:        true,
	StatusConverted:     true,
}

// softDeclineStatuses share one counter and deactivate the lead on the
// SoftDeclineLimit-th occurrence.
var softDeclineStatuses = map[Status]bool{
	StatusCutCall:  true,
	StatusCallBack: true,
}

// IsTerminalStatus returns true if entering status always deactivates a lead.
func IsTerminalStatus(status Status) bool {
	return terminalStatuses[status]
}

// IsSoftDecline reports whether status increments the soft-decline counter.
func IsSoftDecline(status Status) bool {
	return softDeclineStatuses[status]
}

// DNRRung returns the ladder position of status and whether it is a capped rung.
func DNRRung(status Status) (int, bool) {
	k, ok := dnrRung[status]
	return k, ok
}

// IsEnrolled returns true if the lead has left the sales pipeline, based on
// EITHER status or pipeline tag. Enrolled leads are excluded from reassignment
// and further status updates.
func IsEnrolled(status Status, pipeline string) bool {
	return status == StatusConverted || pipeline == PipelineEnrolled
}
