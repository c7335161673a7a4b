/*
Package dispatch implements the bounded-concurrency scheduler at the heart of mpcopy.

	+-------------+
	|  Dispatcher |
	| (Scheduler) |
	+------+------+
	       |
	+------+------+
	|   Workers   |
	| (N at most) |
	+------+------+

🎯 Purpose:
- Maps queued relative paths onto a fixed-size pool of concurrent copies
- Tracks in-flight work and retires completed items from the persisted queue
- Survives interruption: undispatched work stays queued for the next run

🔄 Flow:
1. Snapshot the pending queue in order
2. Acquire a worker slot (weighted semaphore), launch one copy per path
3. Workers hand results to a single reaper goroutine
4. Reaper removes the path from the queue and reports the outcome
5. Drain: wait for workers, then for the reaper, then summarize

⚡ Key Responsibilities:
  - The dispatched count never exceeds the configured limit
  - Every dispatched item is retired exactly once, success or failure alike
  - Queue mutation is serialized through the reaper, whatever order
    completions arrive in
  - Cancellation stops new dispatches but lets in-flight copies finish

🤝 Interfaces:
- rsync.Copier: executes one copy and reports what happened
- queue.Queue: the durable remaining-work set
- Reporter: per-file user feedback, implemented by pkg/status

📝 Design Philosophy:
The dispatcher never interprets a copy's outcome beyond success/failure
counting. Whether failures should fail the whole run is the orchestrator's
policy decision, not the scheduler's.
*/
package dispatch
