package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters for the flows worth watching in production. Registered on the
// default registry and exposed on /metrics.
var (
	RegistrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bashabari_registrations_total",
		Help: "Number of user accounts created",
	})

	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bashabari_logins_total",
		Help: "Number of login attempts by outcome",
	}, []string{"outcome"})

	OTPIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bashabari_otp_issued_total",
		Help: "Number of OTP codes issued (including resends)",
	})

	OTPVerifiedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bashabari_otp_verified_total",
		Help: "Number of OTP verification attempts by outcome",
	}, []string{"outcome"})

	ListingsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bashabari_listings_created_total",
		Help: "Number of listings published",
	})

	AppointmentsBookedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bashabari_appointments_booked_total",
		Help: "Number of viewing appointments booked",
	})

	AgreementsSignedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bashabari_agreements_signed_total",
		Help: "Number of rent agreements signed",
	})

	RentPaymentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bashabari_rent_payments_total",
		Help: "Number of rent payments recorded",
	})
)
