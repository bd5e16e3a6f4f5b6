package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// RPCModel 是通过 HTTP 调用外部价格模型服务的 PriceModel 实现。
// 调用经过熔断器：服务连续失败后短时间内直接失败，由调用方降级到启发式公式。
//
// 请求格式（JSON）：
//
//	{"instances": [[3, 2, 2000, 2010, 10001, 5000], ...]}
//
// 响应格式（JSON）：
//
//	{"predictions": [450000.0, ...]}
type RPCModel struct {
	Endpoint string
	Timeout  time.Duration
	Client   *http.Client

	breaker *gobreaker.CircuitBreaker[[]float64]
}

// NewRPCModel 创建远程模型客户端。
func NewRPCModel(endpoint string, timeout time.Duration) *RPCModel {
	if timeout == 0 {
		timeout = 2 * time.Second
	}
	m := &RPCModel{
		Endpoint: endpoint,
		Timeout:  timeout,
		Client:   &http.Client{Timeout: timeout},
	}
	m.breaker = gobreaker.NewCircuitBreaker[[]float64](gobreaker.Settings{
		Name:        "price-model-rpc",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return m
}

func (m *RPCModel) Name() string { return "rpc" }

// Predict 调用远程模型服务预测单个房源（内部调用批量接口）。
// 排序链路走 PredictBatch，每次推荐只发一次请求。
func (m *RPCModel) Predict(features []float64) (float64, error) {
	prices, err := m.PredictBatch(context.Background(), [][]float64{features})
	if err != nil {
		return 0, err
	}
	return prices[0], nil
}

// PredictBatch 用一次 HTTP 请求预测全部 instances，受 Timeout 与 ctx 约束。
func (m *RPCModel) PredictBatch(ctx context.Context, instances [][]float64) ([]float64, error) {
	if len(instances) == 0 {
		return []float64{}, nil
	}
	return m.breaker.Execute(func() ([]float64, error) {
		return m.call(ctx, instances)
	})
}

// BreakerState 返回熔断器当前状态（closed / half-open / open）。
func (m *RPCModel) BreakerState() string {
	return m.breaker.State().String()
}

func (m *RPCModel) call(ctx context.Context, instances [][]float64) ([]float64, error) {
	if m.Client == nil {
		m.Client = &http.Client{Timeout: m.Timeout}
	}

	body, err := json.Marshal(map[string]any{"instances": instances})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rpc call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("rpc error: status=%d, body=%s", resp.StatusCode, string(b))
	}

	var result struct {
		Predictions []float64 `json:"predictions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(result.Predictions) != len(instances) {
		return nil, fmt.Errorf("response predictions count mismatch: expected %d, got %d", len(instances), len(result.Predictions))
	}
	return result.Predictions, nil
}

// AcquireRemote 以远程模型服务构造 ACQUIRED 句柄。
// 远程服务不做启动探活，单次调用失败由 Predictor 逐个降级。
func AcquireRemote(endpoint string, timeout time.Duration) *Handle {
	return NewHandle(NewRPCModel(endpoint, timeout), "rpc", endpoint)
}
