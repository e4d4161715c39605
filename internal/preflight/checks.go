package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"cinedex/internal/catalog"
	"cinedex/internal/omdb"
	"cinedex/internal/ratelimit"
	"cinedex/internal/storefile"
)

const (
	checkTimeout = 10 * time.Second
	// knownIMDBID is looked up to prove the OMDB key works. Any answer other
	// than a rejection counts as reachable.
	knownIMDBID = "tt0133093"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckStoreFile verifies that the store decodes and holds no invariant
// violations. A store that has not been written yet passes.
func CheckStoreFile(path string) Result {
	const name = "Store file"

	file := storefile.New(path)
	if !file.Exists() {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (not created yet)", path)}
	}
	store, err := file.Load()
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if problems := catalog.Validate(store); len(problems) > 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%d invariant problems (run cinedex validate)", len(problems))}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d entries", store.Len())}
}

// CheckStoreLock verifies that no other writer holds the store lock.
func CheckStoreLock(path string) Result {
	const name = "Store lock"

	file := storefile.New(path)
	unlock, err := file.Lock()
	if err != nil {
		if errors.Is(err, storefile.ErrLocked) {
			return Result{Name: name, Detail: "held by another process"}
		}
		return Result{Name: name, Detail: err.Error()}
	}
	if err := unlock(); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("release failed (%v)", err)}
	}
	return Result{Name: name, Passed: true, Detail: "Available"}
}

// CheckOMDB verifies that the OMDB API is reachable and the key is accepted.
// It makes a single attempt with no retries.
func CheckOMDB(ctx context.Context, apiKey, baseURL string) Result {
	const name = "OMDB"

	if strings.TrimSpace(apiKey) == "" {
		return Result{Name: name, Detail: "missing api key"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	client, err := omdb.New(apiKey, baseURL,
		omdb.WithHTTPClient(&http.Client{Timeout: checkTimeout}),
		omdb.WithRetryPolicy(ratelimit.Policy{MaxRetries: 0}),
	)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	_, err = client.FetchDetails(checkCtx, knownIMDBID)
	switch {
	case err == nil, errors.Is(err, omdb.ErrNotFound):
		return Result{Name: name, Passed: true, Detail: "Reachable"}
	case errors.Is(err, omdb.ErrRejected):
		return Result{Name: name, Detail: "auth failed (invalid api key)"}
	default:
		return Result{Name: name, Detail: summarizeError(err)}
	}
}

// CheckYouTube verifies YouTube Data API connectivity and authentication.
func CheckYouTube(ctx context.Context, baseURL, apiKey string) Result {
	const name = "YouTube"

	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing url"}
	}
	if strings.TrimSpace(apiKey) == "" {
		return Result{Name: name, Detail: "missing api key"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("hl", "en")
	params.Set("key", strings.TrimSpace(apiKey))

	client := &http.Client{Timeout: checkTimeout}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, base+"/i18nLanguages?"+params.Encode(), nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("auth check failed (%v)", err)}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return Result{Name: name, Passed: true, Detail: "Reachable"}
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		return Result{Name: name, Detail: "auth failed (invalid api key)"}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("auth check failed (%d)", resp.StatusCode)}
	}
}

func summarizeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (service unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (service unreachable)"
	}
	return err.Error()
}
