package browser

import "time"

// withRetries runs fn once plus up to retries more times, sleeping backoff
// between attempts. It returns the last error when every attempt fails.
func withRetries(retries int, backoff time.Duration, fn func(attempt int) error) error {
	var err error
	for attempt := 1; attempt <= retries+1; attempt++ {
		if err = fn(attempt); err == nil {
			return nil
		}
		if attempt <= retries {
			time.Sleep(backoff)
		}
	}
	return err
}
