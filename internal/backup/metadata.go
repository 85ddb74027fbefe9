package backup

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"tokenark/internal/fileutil"
	"tokenark/internal/nft"
)

// fetchMetadata retrieves the token metadata document behind tokenURI,
// stores a verbatim copy at destPath, and returns the parsed document.
// Inline data: URIs are decoded locally; everything else goes through the
// download client with its gateway handling.
func (r *Runner) fetchMetadata(ctx context.Context, tokenURI, destPath string) (*nft.Metadata, error) {
	var data []byte
	if strings.HasPrefix(tokenURI, "data:") {
		decoded, err := decodeDataURI(tokenURI)
		if err != nil {
			return nil, err
		}
		if err := fileutil.WriteFileAtomic(destPath, decoded, 0o644); err != nil {
			return nil, err
		}
		data = decoded
	} else {
		result, err := r.downloader.Download(ctx, tokenURI, destPath)
		if err != nil {
			return nil, err
		}
		// The downloader names files after the served content type; the
		// metadata copy keeps its fixed name regardless.
		if result.Path != destPath {
			if err := os.Rename(result.Path, destPath); err != nil {
				return nil, err
			}
		}
		data, err = os.ReadFile(destPath)
		if err != nil {
			return nil, err
		}
	}

	var meta nft.Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse metadata document: %w", err)
	}
	return &meta, nil
}

// decodeDataURI extracts the payload of an inline data: URI, handling both
// base64 and percent-encoded forms.
func decodeDataURI(raw string) ([]byte, error) {
	rest := strings.TrimPrefix(raw, "data:")
	comma := strings.Index(rest, ",")
	if comma < 0 {
		return nil, errors.New("malformed data uri: missing payload separator")
	}
	header, payload := rest[:comma], rest[comma+1:]
	if strings.HasSuffix(header, ";base64") {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// Some minters omit padding.
			decoded, err = base64.RawStdEncoding.DecodeString(payload)
			if err != nil {
				return nil, fmt.Errorf("decode data uri: %w", err)
			}
		}
		return decoded, nil
	}
	decoded, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("decode data uri: %w", err)
	}
	return []byte(decoded), nil
}
