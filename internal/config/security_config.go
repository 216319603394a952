package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token required
	SecurityAdmin                       // Access token with the admin role
)

// EndpointSecurityConfig maps HTTP route names and gRPC full method names to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Health - Public
	"Health":                       SecurityPublic,
	"/grpc.health.v1.Health/Check": SecurityPublic,
	"/grpc.health.v1.Health/Watch": SecurityPublic,

	// Reflection - Admin only
	"/grpc.reflection.v1.ServerReflection/ServerReflectionInfo":      SecurityAdmin,
	"/grpc.reflection.v1alpha.ServerReflection/ServerReflectionInfo": SecurityAdmin,

	// Bookings - Access Protected
	"CreateBooking":   SecurityAccess,
	"ListMyBookings":  SecurityAccess,
	"GetBooking":      SecurityAccess,
	"AcceptBooking":   SecurityAccess,
	"RejectBooking":   SecurityAccess,
	"FundBooking":     SecurityAccess,
	"StartBooking":    SecurityAccess,
	"CompleteBooking": SecurityAccess,
	"CancelBooking":   SecurityAccess,
	"RateBooking":     SecurityAccess,
	"BookingPayments": SecurityAccess,

	// Tractors - Access Protected
	"CheckAvailability": SecurityAccess,

	// Wallet - Access Protected
	"GetWallet":        SecurityAccess,
	"GetWalletSummary": SecurityAccess,
	"CreateTopUp":      SecurityAccess,
	"VerifyTopUp":      SecurityAccess,
	"PaymentHistory":   SecurityAccess,

	// Notifications - Access Protected
	"ListNotifications":    SecurityAccess,
	"MarkNotificationRead": SecurityAccess,

	// Escrow - Admin
	"ReleaseEscrow": SecurityAdmin,
	"RefundEscrow":  SecurityAdmin,
}

// GetSecurityLevel returns the security level for a given route
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAdmin
}
