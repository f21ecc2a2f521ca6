package mc

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/havrydotdev/catclient/pkg/utils"
	"github.com/havrydotdev/catclient/types"
)

const ConcurrentDownloads = utils.DefaultDownloadWorkers

type assetDownloadJob struct {
	Name string
	Hash string
}

type assetDownloadResult struct {
	Name  string
	Error error
}

// AssetObjectURL is where an object with the given hash is served from.
func AssetObjectURL(baseURL, hash string) string {
	return fmt.Sprintf("%s/%s/%s", baseURL, hash[:2], hash)
}

func validAssetHash(hash string) bool {
	if len(hash) < 2 {
		return false
	}
	_, err := hex.DecodeString(hash)
	return err == nil
}

func (v *VersionManager) downloadAssets(ctx context.Context, index *types.AssetIndex, result *Result) {
	if index == nil || index.ID == "" || index.URL == "" {
		return
	}

	indexPath := v.layout.AssetIndexPath(index.ID)

	v.onProgress(StageAssetIndex, 0, 1)
	if err := v.store.FetchVerified(ctx, index.URL, indexPath, index.SHA1); err != nil {
		result.Failures = append(result.Failures, Failure{Stage: StageAssetIndex, Name: index.ID, Err: err})
		return
	}
	v.onProgress(StageAssetIndex, 1, 1)

	objects, err := parseAssetIndex(indexPath)
	if err != nil {
		result.Failures = append(result.Failures, Failure{Stage: StageAssetIndex, Name: index.ID, Err: err})
		return
	}

	result.Failures = append(result.Failures, v.downloadAllAssets(ctx, objects)...)
}

func parseAssetIndex(indexPath string) (*types.AssetObjects, error) {
	file, err := os.Open(indexPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var index types.AssetObjects
	if err := json.NewDecoder(file).Decode(&index); err != nil {
		return nil, fmt.Errorf("invalid asset index %s: %w", indexPath, err)
	}

	return &index, nil
}

func (v *VersionManager) downloadAllAssets(ctx context.Context, index *types.AssetObjects) []Failure {
	var failures []Failure

	// objects are content addressed, so one fetch per hash is enough
	seen := make(map[string]bool, len(index.Objects))
	var queue []assetDownloadJob
	for name, obj := range index.Objects {
		if !validAssetHash(obj.Hash) {
			failures = append(failures, Failure{Stage: StageAssets, Name: name,
				Err: fmt.Errorf("invalid object hash %q", obj.Hash)})
			continue
		}
		if seen[obj.Hash] {
			continue
		}
		seen[obj.Hash] = true
		queue = append(queue, assetDownloadJob{Name: name, Hash: obj.Hash})
	}

	total := len(queue)
	jobs := make(chan assetDownloadJob, total)
	results := make(chan assetDownloadResult, total)

	var wg sync.WaitGroup
	for i := 0; i < v.workers; i++ {
		wg.Add(1)
		go func() {
			v.assetDownloadWorker(ctx, jobs, results, &wg)
		}()
	}

	for _, job := range queue {
		jobs <- job
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	var done, failed int
	for result := range results {
		done++
		if result.Error != nil {
			failed++
			failures = append(failures, Failure{Stage: StageAssets, Name: result.Name, Err: result.Error})
		}

		v.onProgress(StageAssets, done, total)

		if done%500 == 0 {
			v.log.Info("asset progress", slog.Int("progress", done),
				slog.Int("total", total), slog.Int("failed", failed))
		}
	}

	v.onProgress(StageAssets, total, total)

	return failures
}

func (v *VersionManager) assetDownloadWorker(ctx context.Context, jobs <-chan assetDownloadJob, results chan<- assetDownloadResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for job := range jobs {
		url := AssetObjectURL(v.assetBaseURL, job.Hash)
		assetPath := v.layout.AssetObjectPath(job.Hash)

		results <- assetDownloadResult{
			Name:  job.Name,
			Error: v.store.FetchVerified(ctx, url, assetPath, job.Hash),
		}
	}
}
