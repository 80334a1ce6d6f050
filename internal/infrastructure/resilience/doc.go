/*
Package resilience provides a circuit breaker for calls to external services.

The workspace uses it in front of the model endpoint and the seed source
server so a failing upstream is not hammered by every chat dispatch.

# Usage

	breaker := resilience.New("model", resilience.Settings{
		MaxProbes: 2,
		Cooldown:  30 * time.Second,
		ShouldTrip: func(c resilience.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
	})

	err := breaker.Do(ctx, func(ctx context.Context) error {
		return client.Call(ctx)
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		// upstream considered down
	}

# States

	Closed --[ShouldTrip]-> Open --[Cooldown]-> Half-Open --[MaxProbes successes]-> Closed
	                                               |
	                                           [failure]
	                                               v
	                                              Open

Each transition, and each Window rollover while closed, starts a new epoch.
Outcomes of calls admitted in an earlier epoch are ignored.
*/
package resilience
