package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"testing"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/budgetkeeper/internal/models"
)

func TestWriteTransactionsCSV(t *testing.T) {
	food := int64(3)
	at := time.Date(2026, 4, 2, 15, 4, 5, 0, time.UTC)

	txs := []*models.Transaction{
		{ID: 1, Type: models.TransactionExpense, Amount: 1250, CategoryID: &food, Description: "lunch, with \"friends\"", OccurredAt: at},
		{ID: 2, Type: models.TransactionIncome, Amount: 500000, OccurredAt: at},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTransactionsCSV(&buf, txs, map[int64]string{food: "Food"}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, []string{"1", "2026-04-02T15:04:05Z", "expense", "Food", "12.50", "lunch, with \"friends\""}, records[1])
	assert.Equal(t, []string{"2", "2026-04-02T15:04:05Z", "income", "", "5000.00", ""}, records[2])
}

type fakePutter struct {
	err     error
	key     string
	body    []byte
	ctype   string
	bucket  string
	invoked bool
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.invoked = true
	if f.err != nil {
		return nil, f.err
	}
	f.bucket = *in.Bucket
	f.key = *in.Key
	f.ctype = *in.ContentType
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

type fakePresigner struct {
	err error
}

func (f *fakePresigner) PresignGetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &v4.PresignedHTTPRequest{URL: "https://s3.local/" + *in.Bucket + "/" + *in.Key + "?sig=1"}, nil
}

func TestS3Uploader_Upload(t *testing.T) {
	putter := &fakePutter{}
	u := &S3Uploader{client: putter, presigner: &fakePresigner{}, bucket: "reports", expiry: time.Minute}

	url, err := u.Upload(context.Background(), "users/1/2026-04.csv", CSVContentType, []byte("a,b\n"))
	require.NoError(t, err)

	assert.Equal(t, "https://s3.local/reports/users/1/2026-04.csv?sig=1", url)
	assert.Equal(t, "reports", putter.bucket)
	assert.Equal(t, "users/1/2026-04.csv", putter.key)
	assert.Equal(t, CSVContentType, putter.ctype)
	assert.Equal(t, []byte("a,b\n"), putter.body)
}

func TestS3Uploader_Errors(t *testing.T) {
	u := &S3Uploader{client: &fakePutter{err: errors.New("access denied")}, presigner: &fakePresigner{}, bucket: "reports"}
	_, err := u.Upload(context.Background(), "k", CSVContentType, nil)
	assert.ErrorContains(t, err, "access denied")

	putter := &fakePutter{}
	u = &S3Uploader{client: putter, presigner: &fakePresigner{err: errors.New("bad creds")}, bucket: "reports"}
	_, err = u.Upload(context.Background(), "k", CSVContentType, nil)
	assert.ErrorContains(t, err, "bad creds")
	assert.True(t, putter.invoked)
}

func TestNewS3Uploader(t *testing.T) {
	_, err := NewS3Uploader(context.Background(), S3Config{Bucket: "reports"})
	assert.Error(t, err)

	u, err := NewS3Uploader(context.Background(), S3Config{
		Endpoint:  "http://127.0.0.1:9000",
		Bucket:    "reports",
		AccessKey: "minio",
		SecretKey: "minio-secret",
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultURLExpiry, u.expiry)

	// подпись вычисляется локально, сеть не нужна
	req, err := u.presigner.PresignGetObject(context.Background(), &s3.GetObjectInput{
		Bucket: &u.bucket,
		Key:    ptr("users/1/report.csv"),
	})
	require.NoError(t, err)
	assert.Contains(t, req.URL, "http://127.0.0.1:9000/reports/users/1/report.csv")
	assert.Contains(t, req.URL, "X-Amz-Signature=")
}

func ptr(s string) *string {
	return &s
}
