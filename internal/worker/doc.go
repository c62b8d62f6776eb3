// Package worker implements the background loop that drains pending
// vocabulary job items, calls the generation API for each word, and
// finalizes jobs whose items have all been processed.
//
// The loop is deliberately single-threaded and paced: the external
// generation API is rate limited, so items are processed one at a time
// with a fixed delay between them, and the loop sleeps between polls
// when the queue is empty.
package worker
