// Package packetq provides bounded, in-process packet queues that
// decouple producers from consumer goroutines. Producers are never
// blocked: when a queue is full, admission evicts the oldest resident
// packet (drop-oldest overflow). Many independent queues drain on one
// shared worker pool, with a cooperative per-turn budget bounding how
// long any single queue can monopolize a worker.
//
// packetq is designed as a library, not a service. Create a pool, then
// hang any number of queues off it:
//
//	p := pool.New(4)
//	q, err := packetq.New("rtp-ingress", 1024, handler, p,
//	    packetq.WithTurnBudget(64),
//	    packetq.WithStatistics(),
//	)
//	...
//	q.Add(pkt) // O(1), never blocks
//
// The packet handler runs on pool workers, one packet at a time per
// queue (strict FIFO, never concurrently with itself). A handler panic
// is contained and reported to the queue's ErrorHandler; the drain loop
// moves on to the next packet.
package packetq
