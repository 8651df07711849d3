package storage

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// ErrBlobNotFound indicates the container or blob does not exist
var ErrBlobNotFound = errors.New("blob not found")

// blobDownloader is the subset of *azblob.Client the fetcher uses
type blobDownloader interface {
	DownloadStream(ctx context.Context, containerName string, blobName string, o *azblob.DownloadStreamOptions) (azblob.DownloadStreamResponse, error)
}

// AzureBlobFetcher loads images from Azure Blob Storage
type AzureBlobFetcher struct {
	client   blobDownloader
	maxBytes int64
}

// NewAzureStorage creates a blob fetcher authenticated with a shared key
func NewAzureStorage(accountName, accountKey string, maxBytes int64) (*AzureBlobFetcher, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid azure credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure client: %w", err)
	}

	return newAzureBlobFetcher(client, maxBytes), nil
}

func newAzureBlobFetcher(client blobDownloader, maxBytes int64) *AzureBlobFetcher {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	return &AzureBlobFetcher{client: client, maxBytes: maxBytes}
}

// FetchImage downloads the blob addressed by blobURL and decodes it
func (s *AzureBlobFetcher) FetchImage(ctx context.Context, blobURL string) (image.Image, string, error) {
	containerName, blobName, err := parseBlobURL(blobURL)
	if err != nil {
		return nil, "", err
	}

	resp, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, "", fmt.Errorf("%w: %s/%s", ErrBlobNotFound, containerName, blobName)
		}
		return nil, "", fmt.Errorf("download failed: %w", err)
	}

	body := resp.Body
	defer body.Close()

	return DecodeImage(body, s.maxBytes)
}

// parseBlobURL splits a blob URL into container and blob name. The blob name
// is the path after the container, or the "blob" query parameter when the
// path names only the container.
func parseBlobURL(blobURL string) (string, string, error) {
	parsedURL, err := url.Parse(blobURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid blob URL: %w", err)
	}

	path := strings.TrimPrefix(parsedURL.Path, "/")
	containerName, blobName, _ := strings.Cut(path, "/")
	if blobName == "" {
		blobName = parsedURL.Query().Get("blob")
	}
	if containerName == "" || blobName == "" {
		return "", "", fmt.Errorf("invalid blob URL %q: container and blob name required", blobURL)
	}
	return containerName, blobName, nil
}
