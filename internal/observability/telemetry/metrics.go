package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Métricas de negócio
	ActiveConversations = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "songorder_active_conversations",
		Help: "Número de conversas em andamento",
	})

	OrdersConfirmedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "songorder_orders_total",
		Help: "Total de pedidos por resultado da confirmação",
	}, []string{"result"})

	TurnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "songorder_turns_total",
		Help: "Total de turnos processados por etapa e resultado",
	}, []string{"step", "outcome"})

	SlotUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "songorder_slot_updates_total",
		Help: "Atualizações de slot aplicadas pelo merge",
	}, []string{"slot", "kind"})

	ValidationRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "songorder_validation_rejections_total",
		Help: "Respostas rejeitadas pela validação de tamanho",
	}, []string{"rule"})

	ContractViolationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "songorder_contract_violations_total",
		Help: "Saídas do oráculo que violaram o contrato do prompt",
	}, []string{"contract", "slot"})

	// Métricas do oráculo
	OracleCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "songorder_oracle_calls_total",
		Help: "Chamadas ao oráculo por contrato e status",
	}, []string{"contract", "status"})

	OracleLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "songorder_oracle_latency_seconds",
		Help:    "Latência das chamadas ao oráculo",
		Buckets: prometheus.DefBuckets,
	}, []string{"contract"})

	// Métricas de infraestrutura
	FunnelEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "songorder_funnel_events_total",
		Help: "Eventos de funil publicados",
	}, []string{"type", "status"})

	DatabaseLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "songorder_database_latency_seconds",
		Help:    "Latência de queries no banco",
		Buckets: prometheus.DefBuckets,
	})
)
