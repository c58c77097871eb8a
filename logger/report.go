package logger

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	gnet "github.com/shirou/gopsutil/v3/net"

	"github.com/aws/aws-sdk-go-v2/aws"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

type stageStat struct {
	records int64
	bytes   int64
}

var (
	errorsFetcher    int64
	errorsProcessor  int64
	warnsFetcher     int64
	warnsProcessor   int64
	walletsFetched   int64
	walletsScored    int64
	resultsWritten   int64
	s3Uploads        int64
	stages           sync.Map // map[string]*stageStat
)

func recordWarn(component string) {
	if strings.Contains(component, "fetcher") || strings.Contains(component, "etherscan") {
		atomic.AddInt64(&warnsFetcher, 1)
	} else if strings.Contains(component, "processor") || strings.Contains(component, "scorer") {
		atomic.AddInt64(&warnsProcessor, 1)
	}
}

func recordError(component string) {
	if strings.Contains(component, "fetcher") || strings.Contains(component, "etherscan") {
		atomic.AddInt64(&errorsFetcher, 1)
	} else if strings.Contains(component, "processor") || strings.Contains(component, "scorer") {
		atomic.AddInt64(&errorsProcessor, 1)
	}
}

// IncrementWalletFetched records one fetched wallet with the payload size
// read from the explorer API.
func IncrementWalletFetched(size int) {
	atomic.AddInt64(&walletsFetched, 1)
	recordStage("fetcher_rest", size)
}

// IncrementWalletScored records one wallet run through the scoring pipeline.
func IncrementWalletScored() {
	atomic.AddInt64(&walletsScored, 1)
	recordStage("score_pipeline", 0)
}

// IncrementResultWrite records one result artifact written locally.
func IncrementResultWrite(size int64) {
	atomic.AddInt64(&resultsWritten, 1)
	recordStage("result_write", int(size))
}

// IncrementS3Upload records one result artifact uploaded to S3.
func IncrementS3Upload(size int64) {
	atomic.AddInt64(&s3Uploads, 1)
	recordStage("s3_upload", int(size))
}

// RecordStageRecords adds record and byte counts for a named pipeline stage.
func RecordStageRecords(name string, records int, size int) {
	v, _ := stages.LoadOrStore(name, &stageStat{})
	ss := v.(*stageStat)
	atomic.AddInt64(&ss.records, int64(records))
	atomic.AddInt64(&ss.bytes, int64(size))
}

func recordStage(name string, size int) {
	v, _ := stages.LoadOrStore(name, &stageStat{})
	ss := v.(*stageStat)
	atomic.AddInt64(&ss.records, 1)
	atomic.AddInt64(&ss.bytes, int64(size))
}

func startReport(ctx context.Context, log *Log, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-ticker.C:
				logReport(ctx, log)
			}
		}
	}()
}

// StartReport begins periodic logging of system and pipeline statistics.
// It exposes the internal startReport function for use by other packages.
func StartReport(ctx context.Context, log *Log, interval time.Duration) {
	startReport(ctx, log, interval)
}

func logReport(ctx context.Context, log *Log) {
	cpuPercent, _ := cpu.Percent(0, false)
	memStats, _ := mem.VirtualMemory()
	diskStats, _ := disk.Usage("/")
	netStats, _ := gnet.IOCounters(false)
	stageData := map[string]map[string]int64{}
	stages.Range(func(k, v any) bool {
		name := k.(string)
		ss := v.(*stageStat)
		stageData[name] = map[string]int64{
			"records": atomic.LoadInt64(&ss.records),
			"bytes":   atomic.LoadInt64(&ss.bytes),
		}
		return true
	})

	cpuPct := 0.0
	if len(cpuPercent) > 0 {
		cpuPct = cpuPercent[0]
	}

	bytesSent := uint64(0)
	bytesRecv := uint64(0)
	if len(netStats) > 0 {
		bytesSent = netStats[0].BytesSent
		bytesRecv = netStats[0].BytesRecv
	}

	fields := Fields{
		"errors_fetcher":   atomic.LoadInt64(&errorsFetcher),
		"errors_processor": atomic.LoadInt64(&errorsProcessor),
		"warns_fetcher":    atomic.LoadInt64(&warnsFetcher),
		"warns_processor":  atomic.LoadInt64(&warnsProcessor),
		"wallets_fetched":  atomic.LoadInt64(&walletsFetched),
		"wallets_scored":   atomic.LoadInt64(&walletsScored),
		"results_written":  atomic.LoadInt64(&resultsWritten),
		"s3_uploads":       atomic.LoadInt64(&s3Uploads),
		"goroutines":       runtime.NumGoroutine(),
		"cpu_percent":      cpuPct,
		"memory_mb":        int64(memStats.Used) / 1024 / 1024,
		"disk_mb":          int64(diskStats.Used) / 1024 / 1024,
		"stages":           stageData,
		"net_bytes_sent":   int64(bytesSent),
		"net_bytes_recv":   int64(bytesRecv),
	}

	log.WithComponent("report").WithFields(fields).Info("runtime report")

	var data []cwtypes.MetricDatum
	data = append(data,
		cwtypes.MetricDatum{MetricName: aws.String("Risk-CPUPercent"), Unit: cwtypes.StandardUnitPercent, Value: aws.Float64(cpuPct)},
		cwtypes.MetricDatum{MetricName: aws.String("Risk-MemoryMB"), Unit: cwtypes.StandardUnitMegabytes, Value: aws.Float64(float64(memStats.Used) / 1024 / 1024)},
		cwtypes.MetricDatum{MetricName: aws.String("Risk-DiskMB"), Unit: cwtypes.StandardUnitMegabytes, Value: aws.Float64(float64(diskStats.Used) / 1024 / 1024)},
		cwtypes.MetricDatum{MetricName: aws.String("Risk-ErrorsFetcher"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(atomic.LoadInt64(&errorsFetcher)))},
		cwtypes.MetricDatum{MetricName: aws.String("Risk-ErrorsProcessor"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(atomic.LoadInt64(&errorsProcessor)))},
		cwtypes.MetricDatum{MetricName: aws.String("Risk-WarnsFetcher"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(atomic.LoadInt64(&warnsFetcher)))},
		cwtypes.MetricDatum{MetricName: aws.String("Risk-WarnsProcessor"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(atomic.LoadInt64(&warnsProcessor)))},
		cwtypes.MetricDatum{MetricName: aws.String("Risk-WalletsFetched"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(atomic.LoadInt64(&walletsFetched)))},
		cwtypes.MetricDatum{MetricName: aws.String("Risk-WalletsScored"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(atomic.LoadInt64(&walletsScored)))},
		cwtypes.MetricDatum{MetricName: aws.String("Risk-ResultsWritten"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(atomic.LoadInt64(&resultsWritten)))},
		cwtypes.MetricDatum{MetricName: aws.String("Risk-S3Uploads"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(atomic.LoadInt64(&s3Uploads)))},
		cwtypes.MetricDatum{MetricName: aws.String("Risk-NetBytesSent"), Unit: cwtypes.StandardUnitBytes, Value: aws.Float64(float64(bytesSent))},
		cwtypes.MetricDatum{MetricName: aws.String("Risk-NetBytesRecv"), Unit: cwtypes.StandardUnitBytes, Value: aws.Float64(float64(bytesRecv))},
	)

	for name, stats := range stageData {
		data = append(data,
			cwtypes.MetricDatum{
				MetricName: aws.String("Risk-StageRecords"),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{{Name: aws.String("Stage"), Value: aws.String(name)}},
				Value:      aws.Float64(float64(stats["records"])),
			},
			cwtypes.MetricDatum{
				MetricName: aws.String("Risk-StageBytes"),
				Unit:       cwtypes.StandardUnitBytes,
				Dimensions: []cwtypes.Dimension{{Name: aws.String("Stage"), Value: aws.String(name)}},
				Value:      aws.Float64(float64(stats["bytes"])),
			},
		)
	}

	publishMetrics(ctx, data)
}
