package app

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Auth
	r.HandleFunc("/api/auth/signup", deps.AuthHandler.SignUp).Methods("POST")
	r.HandleFunc("/api/auth/signin", deps.AuthHandler.SignIn).Methods("POST")
	r.HandleFunc("/api/auth/signout", deps.AuthHandler.SignOut).Methods("POST")

	// User
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/user/current", deps.UserHandler.UpdateProfile).Methods("PUT")
	r.HandleFunc("/api/user/current/avatar", deps.UserHandler.UploadAvatar).Methods("PUT")

	// Items
	r.HandleFunc("/api/item", deps.ItemHandler.List).Methods("GET")
	r.HandleFunc("/api/item", deps.ItemHandler.Create).Methods("POST")
	r.HandleFunc("/api/item/image", deps.ItemHandler.UploadImage).Methods("POST")
	r.HandleFunc("/api/item/{itemId}", deps.ItemHandler.Get).Methods("GET")
	r.HandleFunc("/api/item/{itemId}", deps.ItemHandler.Update).Methods("PUT")
	r.HandleFunc("/api/item/{itemId}", deps.ItemHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/item/{itemId}/quantity", deps.ItemHandler.SetQuantity).Methods("PUT")
	r.HandleFunc("/api/item/{itemId}/entry", deps.ItemHandler.AddEntry).Methods("POST")
	r.HandleFunc("/api/item/{itemId}/entry", deps.ItemHandler.ListEntries).Methods("GET")
	r.HandleFunc("/api/item/{itemId}/recalculate", deps.ItemHandler.Recalculate).Methods("POST")

	// Shopping list
	r.HandleFunc("/api/shopping", deps.ShoppingHandler.List).Methods("GET")
	r.HandleFunc("/api/shopping", deps.ShoppingHandler.Create).Methods("POST")
	r.HandleFunc("/api/shopping/{id}", deps.ShoppingHandler.Update).Methods("PUT")
	r.HandleFunc("/api/shopping/{id}/purchased", deps.ShoppingHandler.SetPurchased).Methods("PUT")
	r.HandleFunc("/api/shopping/{id}/price", deps.ShoppingHandler.SetPrice).Methods("PUT")
	r.HandleFunc("/api/shopping/{id}", deps.ShoppingHandler.Delete).Methods("DELETE")

	// Investments
	r.HandleFunc("/api/investment", deps.InvestmentHandler.List).Methods("GET")
	r.HandleFunc("/api/investment", deps.InvestmentHandler.Create).Methods("POST")
	r.HandleFunc("/api/investment/settings", deps.InvestmentHandler.GetSettings).Methods("GET")
	r.HandleFunc("/api/investment/settings", deps.InvestmentHandler.UpdateSettings).Methods("PUT")
	r.HandleFunc("/api/investment/simulation", deps.InvestmentHandler.Simulate).Methods("GET")
	r.HandleFunc("/api/investment/{id}", deps.InvestmentHandler.Update).Methods("PUT")
	r.HandleFunc("/api/investment/{id}", deps.InvestmentHandler.Delete).Methods("DELETE")

	// Summary, notifications, admin
	r.HandleFunc("/api/summary", deps.SummaryHandler.GetSummary).Methods("GET")
	r.HandleFunc("/api/notifications", deps.NotificationHandler.List).Methods("GET")
	r.HandleFunc("/api/admin/stats", deps.AdminHandler.GetStats).Methods("GET")

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
}

// RegisterMedia serves files of the local storage backend under /media/.
func RegisterMedia(r *mux.Router, root string) {
	r.PathPrefix("/media/").Handler(http.StripPrefix("/media/", http.FileServer(http.Dir(root)))).Methods("GET")
}
