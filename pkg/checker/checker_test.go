package checker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/digitalocean/atlas-check/pkg/atlas"
	"github.com/digitalocean/atlas-check/pkg/measurement"
	"github.com/digitalocean/atlas-check/pkg/message"
	"github.com/digitalocean/atlas-check/pkg/types/check"
	gomock "github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Unix(1700000000, 0)

func records(t *testing.T, raw string) []atlas.Record {
	t.Helper()
	var r []atlas.Record
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	return r
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := atlas.NewMockFetcher(ctrl)
	f.EXPECT().Latest(gomock.Any(), "1234").Return(records(t, `[
		[1, 1, 0, 0, 0, [10.5, 1700000000]],
		[1, 2, 0, 0, 0, null],
		[1, 3, 0, 0, 0, [99.5, 1699990000]],
		[1, 4, 0, 0, 0, [null, 1700000000]]
	]`), nil)

	r := check.NewMockReporter(ctrl)
	gomock.InOrder(
		r.EXPECT().AddError("2", NoData),
		r.EXPECT().AddError("4", gomock.Any()),
		r.EXPECT().AddOK("1", gomock.Any()),
		r.EXPECT().AddOK("1", "desired (50), real (10.5) (Ping avg)"),
		r.EXPECT().AddError("3", gomock.Any()),
		r.EXPECT().AddError("3", "desired (50), real (99.5) (Ping avg)"),
	)

	c := NewChecker(WithFetcher(f), WithNow(func() time.Time { return testNow }))
	err := c.Run(ctx, measurement.KindPing, check.Options{
		MeasurementID:     "1234",
		MaxMeasurementAge: time.Hour,
		RTTAvg:            50,
	}, r)
	require.NoError(t, err)
}

func TestRunFetchError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := atlas.NewMockFetcher(ctrl)
	f.EXPECT().Latest(gomock.Any(), "1234").Return(nil, errors.New("connection refused"))

	c := NewChecker(WithFetcher(f))
	err := c.Run(context.Background(), measurement.KindHTTP, check.Options{MeasurementID: "1234"}, message.New(0))
	assert.Error(t, err)
}

func TestRunWithoutFetcher(t *testing.T) {
	err := NewChecker().Run(context.Background(), measurement.KindHTTP, check.Options{}, message.New(0))
	assert.Error(t, err)
}

func TestEvaluateDNS(t *testing.T) {
	ctx := context.Background()
	recs := records(t, `[
		[1, 100, 0, 0, 0, [0, 1700000000, {"question": "example.com. IN A", "rcode": "NOERROR", "flags": "qr rd ra", "authority": [], "additional": [], "answer": "example.com. 60 IN A 192.0.2.1"}]],
		[1, 101, 0, 0, 0, [0, 1700000000, {"question": "example.com. IN A", "rcode": "NOERROR", "flags": "qr rd ra", "authority": [], "additional": [], "answer": ["www.example.com. 60 IN CNAME example.com."]}]]
	]`)

	c := NewChecker(WithNow(func() time.Time { return testNow }))
	msg := message.New(1)
	c.Check(ctx, c.Parse(ctx, recs, measurement.ParseKind("A"), msg), check.Options{ARecord: "192.0.2.1"}, msg)

	ok, warn, errs := msg.Counts()
	assert.Equal(t, 1, ok)
	assert.Equal(t, 0, warn)
	assert.Equal(t, 1, errs)
	assert.Equal(t, check.StatusCritical, msg.Status())
}
