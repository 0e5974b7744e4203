package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SalesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sales_created_total",
		Help: "Total number of sales processed",
	})

	SalesFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_failed_total",
		Help: "Total number of failed sale transactions",
	}, []string{"reason"})

	CheckoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkouts_total",
		Help: "Total number of storefront checkouts",
	})

	CheckoutsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkouts_failed_total",
		Help: "Total number of failed storefront checkouts",
	}, []string{"reason"})

	InvoicesIssuedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invoices_issued_total",
		Help: "Total number of invoices issued",
	}, []string{"mode"})

	InvoicesFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invoices_failed_total",
		Help: "Total number of failed invoice issuances",
	}, []string{"reason"})

	CommissionsPaidTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "commissions_paid_total",
		Help: "Total number of commissions settled",
	})

	OrdersAdvancedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_advanced_total",
		Help: "Total number of fulfillment order status changes",
	}, []string{"to_status"})

	StockDecrementedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_decremented_units_total",
		Help: "Total units of stock decremented by sales",
	})

	AfipRequestLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "afip_request_latency_seconds",
		Help:    "Latency of fiscal authority requests",
		Buckets: prometheus.DefBuckets,
	})

	PDFRenderLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pdf_render_latency_seconds",
		Help:    "Latency of PDF rendering",
		Buckets: prometheus.DefBuckets,
	})

	DriveUploadLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "drive_upload_latency_seconds",
		Help:    "Latency of file-hosting uploads",
		Buckets: prometheus.DefBuckets,
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
