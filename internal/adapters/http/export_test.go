package http

// WSSubjectFor exposes the channel to subject mapping to tests.
func WSSubjectFor(simulation, booking, channel string) (subject, problem string) {
	return wsSubjectFor(wsMessage{Action: "subscribe", Simulation: simulation, Booking: booking, Channel: channel})
}
