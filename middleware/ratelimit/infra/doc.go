// Package infra contém implementações concretas dos contratos de domain.
//
//   - BucketStore: token bucket por chave (golang.org/x/time/rate) para o guard
//   - ChanPool: semáforo para limite de concorrência
//   - MemoryStatsStore, RedisStatsStore, PrometheusStatsStore: estatísticas das decisões
package infra
