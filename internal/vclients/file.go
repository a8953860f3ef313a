package vclients

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// fileStore appends one |-delimited record per registration:
//
//	clientID|tenantID|createdAt|clientName|uri1,uri2
//
// Concurrent writers are not coordinated and reads scan the whole file.
// Acceptable for the documented low-volume, non-production scope only.
type fileStore struct {
	path    string
	deriver SecretDeriver
	log     *zap.SugaredLogger
}

func NewFileStore(path string, deriver SecretDeriver, log *zap.SugaredLogger) Store {
	return &fileStore{path: path, deriver: deriver, log: log}
}

const fileHeader = `# edugate virtual clients
# format: client_id|tenant_id|created_at|client_name|redirect_uris
`

func (s *fileStore) Initialize(_ context.Context) error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	return os.WriteFile(s.path, []byte(fileHeader), 0o600)
}

func (s *fileStore) Register(_ context.Context, tenantID, clientName string, redirectURIs []string) (VirtualClient, string, error) {
	vc := VirtualClient{
		ClientID:     uuid.NewString(),
		TenantID:     tenantID,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
		ClientName:   clientName,
		RedirectURIs: redirectURIs,
	}
	line := fmt.Sprintf("%s|%s|%s|%s|%s\n",
		vc.ClientID, vc.TenantID, vc.CreatedAt.Format(time.RFC3339),
		vc.ClientName, strings.Join(vc.RedirectURIs, ","))
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return VirtualClient{}, "", err
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return VirtualClient{}, "", err
	}
	s.log.Infow("virtual client registered", "client_id", vc.ClientID, "tenant", tenantID)
	return vc, s.deriver.Derive(vc.ClientID), nil
}

func (s *fileStore) Lookup(ctx context.Context, clientID string) (*VirtualClient, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ClientID == clientID {
			return &all[i], nil
		}
	}
	return nil, nil
}

func (s *fileStore) ListAll(_ context.Context) ([]VirtualClient, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []VirtualClient
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		vc, ok := parseRecord(line)
		if !ok {
			continue
		}
		out = append(out, vc)
	}
	return out, nil
}

// parseRecord tolerates malformed lines (fewer than 3 fields) by skipping
// them. Empty name/uris fields mean absent, not empty values.
func parseRecord(line string) (VirtualClient, bool) {
	fields := strings.Split(line, "|")
	if len(fields) < 3 {
		return VirtualClient{}, false
	}
	vc := VirtualClient{ClientID: fields[0], TenantID: fields[1]}
	if t, err := time.Parse(time.RFC3339, fields[2]); err == nil {
		vc.CreatedAt = t
	}
	if len(fields) > 3 && fields[3] != "" {
		vc.ClientName = fields[3]
	}
	if len(fields) > 4 && fields[4] != "" {
		vc.RedirectURIs = strings.Split(fields[4], ",")
	}
	return vc, true
}
