// Package s3store keeps brandkit records as JSON objects in an S3 bucket,
// one object per record at <prefix>/<table>/<id>.json.
package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/eringen/brandkit/record"
)

const (
	metaVersion = "Version"
	metaCreated = "Created"
	objectExt   = ".json"
)

// Config selects the bucket and credentials. Empty keys fall back to the
// SDK's default credential chain.
type Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Prefix          string `yaml:"prefix"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// Store implements record.Store on S3. Version checks read the current
// object metadata before writing, so two writers racing inside that window
// can both succeed.
type Store struct {
	svc    s3iface.S3API
	bucket string
	prefix string
	now    func() time.Time
}

// New creates a Store with a real S3 session.
func New(cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3store: bucket is required")
	}
	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("s3store: new session: %w", err)
	}
	return NewWithClient(s3.New(sess), cfg.Bucket, cfg.Prefix), nil
}

// NewWithClient wraps an existing S3 client.
func NewWithClient(svc s3iface.S3API, bucket, prefix string) *Store {
	return &Store{
		svc:    svc,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		now:    time.Now,
	}
}

func (s *Store) tablePrefix(table string) string {
	if s.prefix == "" {
		return table + "/"
	}
	return s.prefix + "/" + table + "/"
}

func (s *Store) key(table, id string) string {
	return s.tablePrefix(table) + url.PathEscape(id) + objectExt
}

func isNotFound(err error) bool {
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		switch aerr.Code() {
		case s3.ErrCodeNoSuchKey, "NotFound":
			return true
		}
	}
	return false
}

func metaInt(meta map[string]*string, key string) int64 {
	for k, v := range meta {
		if strings.EqualFold(k, key) && v != nil {
			n, _ := strconv.ParseInt(*v, 10, 64)
			return n
		}
	}
	return 0
}

func (s *Store) Get(ctx context.Context, table, id string) (record.Record, error) {
	if err := record.CheckTable(table); err != nil {
		return record.Record{}, err
	}
	return s.get(ctx, table, id)
}

func (s *Store) get(ctx context.Context, table, id string) (record.Record, error) {
	out, err := s.svc.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(table, id)),
	})
	if err != nil {
		if isNotFound(err) {
			return record.Record{}, record.ErrNotFound
		}
		return record.Record{}, err
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return record.Record{}, fmt.Errorf("s3store: read %s: %w", id, err)
	}
	return record.Record{
		ID:        id,
		Data:      data,
		CreatedAt: time.UnixMilli(metaInt(out.Metadata, metaCreated)),
		Version:   metaInt(out.Metadata, metaVersion),
	}, nil
}

func (s *Store) Upsert(ctx context.Context, table string, rec record.Record) error {
	if err := record.CheckTable(table); err != nil {
		return err
	}
	key := s.key(table, rec.ID)
	var curVersion, curCreated int64
	exists := true
	head, err := s.svc.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	switch {
	case err == nil:
		curVersion = metaInt(head.Metadata, metaVersion)
		curCreated = metaInt(head.Metadata, metaCreated)
	case isNotFound(err):
		exists = false
	default:
		return err
	}
	if err := record.CheckVersion(rec.Version, curVersion, exists); err != nil {
		return err
	}

	created := rec.CreatedAt.UnixMilli()
	switch {
	case !rec.CreatedAt.IsZero():
	case exists:
		created = curCreated
	default:
		created = s.now().UnixMilli()
	}

	_, err = s.svc.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(rec.Data),
		ContentType: aws.String("application/json"),
		Metadata: map[string]*string{
			metaVersion: aws.String(strconv.FormatInt(curVersion+1, 10)),
			metaCreated: aws.String(strconv.FormatInt(created, 10)),
		},
	})
	return err
}

func (s *Store) Delete(ctx context.Context, table, id string) error {
	if err := record.CheckTable(table); err != nil {
		return err
	}
	_, err := s.svc.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(table, id)),
	})
	if err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

// List fetches every object under the table prefix. OrderNone keeps S3's
// lexical key order.
func (s *Store) List(ctx context.Context, table string, order record.Order) ([]record.Record, error) {
	if err := record.CheckTable(table); err != nil {
		return nil, err
	}
	prefix := s.tablePrefix(table)
	var ids []string
	err := s.svc.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	}, func(page *s3.ListObjectsV2Output, _ bool) bool {
		for _, obj := range page.Contents {
			name := strings.TrimSuffix(strings.TrimPrefix(aws.StringValue(obj.Key), prefix), objectExt)
			id, err := url.PathUnescape(name)
			if err != nil {
				id = name
			}
			ids = append(ids, id)
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	recs := make([]record.Record, 0, len(ids))
	for _, id := range ids {
		rec, err := s.get(ctx, table, id)
		if errors.Is(err, record.ErrNotFound) {
			continue // deleted between list and get
		}
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	record.SortRecords(recs, order)
	return recs, nil
}

// Close is a no-op; the SDK client holds no resources that need releasing.
func (s *Store) Close() error { return nil }
