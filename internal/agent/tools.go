package agent

import (
	"google.golang.org/genai"

	"github.com/nexshop/marketplace/internal/domain/entity"
	"github.com/nexshop/marketplace/internal/state"
)

// toolDeclarations mirrors the dispatch surface one-to-one. The model
// can only reach actions a user can reach; anything else fails at
// FromToolCall and is reported back as data.
func toolDeclarations() []*genai.FunctionDeclaration {
	categories := make([]string, 0, len(entity.Categories()))
	for _, c := range entity.Categories() {
		categories = append(categories, string(c))
	}
	views := []string{
		string(state.ViewHome), string(state.ViewSearch), string(state.ViewProductDetail),
		string(state.ViewCart), string(state.ViewLogin), string(state.ViewRegister),
		string(state.ViewVerifyEmail), string(state.ViewProfile), string(state.ViewOrders),
		string(state.ViewSellerDashboard), string(state.ViewCompare),
	}

	return []*genai.FunctionDeclaration{
		{
			Name:        "searchProducts",
			Description: "Searches for products based on a query, category, and price range.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"query":    {Type: genai.TypeString, Description: "Text search query"},
					"category": {Type: genai.TypeString, Description: "Category to filter by", Enum: categories},
					"minPrice": {Type: genai.TypeNumber, Description: "Minimum price filter"},
					"maxPrice": {Type: genai.TypeNumber, Description: "Maximum price filter"},
				},
			},
		},
		{
			Name:        "addToCart",
			Description: "Adds a specific product to the user shopping cart.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"productId": {Type: genai.TypeString, Description: "The product id, or its name if the id is unknown"},
					"quantity":  {Type: genai.TypeNumber, Description: "How many items to add"},
				},
				Required: []string{"productId"},
			},
		},
		{
			Name:        "viewProduct",
			Description: "Navigates the user to a detailed view of a specific product.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"productId": {Type: genai.TypeString, Description: "The product id, or its name if the id is unknown"},
				},
				Required: []string{"productId"},
			},
		},
		{
			Name:        "navigateTo",
			Description: "Changes the application page/view.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"view": {Type: genai.TypeString, Description: "The destination view", Enum: views},
				},
				Required: []string{"view"},
			},
		},
		{
			Name:        "login",
			Description: "Logs the user in, or opens the login screen when no credentials are given.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"email":    {Type: genai.TypeString},
					"password": {Type: genai.TypeString},
				},
			},
		},
		{
			Name:        "checkout",
			Description: "Runs the guarded checkout flow for the current cart.",
			Parameters:  &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{}},
		},
		{
			Name:        "updateProfile",
			Description: "Updates the user's profile: display name, shipping address, payment card.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":       {Type: genai.TypeString},
					"address":    {Type: genai.TypeString},
					"cardNumber": {Type: genai.TypeString},
					"cardExpiry": {Type: genai.TypeString},
					"cardCvv":    {Type: genai.TypeString},
				},
			},
		},
		{
			Name:        "postReview",
			Description: "Posts a product review with a 1-5 star rating.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"productId": {Type: genai.TypeString},
					"rating":    {Type: genai.TypeNumber, Description: "Star rating from 1 to 5"},
					"comment":   {Type: genai.TypeString},
				},
				Required: []string{"productId", "rating"},
			},
		},
		{
			Name:        "updateOrderStatus",
			Description: "Advances an order to a new status (Pending, Shipped, Delivered, Cancelled).",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"orderId": {Type: genai.TypeString},
					"status":  {Type: genai.TypeString, Enum: []string{"Pending", "Shipped", "Delivered", "Cancelled"}},
				},
				Required: []string{"orderId", "status"},
			},
		},
		{
			Name:        "addProduct",
			Description: "Creates a new product listing owned by the current user.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":        {Type: genai.TypeString},
					"description": {Type: genai.TypeString},
					"price":       {Type: genai.TypeNumber},
					"category":    {Type: genai.TypeString, Enum: categories},
					"specs":       {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
				},
				Required: []string{"name"},
			},
		},
		{
			Name:        "compareProduct",
			Description: "Adds a product to the side-by-side comparison list (up to 4).",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"productId": {Type: genai.TypeString},
				},
				Required: []string{"productId"},
			},
		},
		{
			Name:        "setSellerTab",
			Description: "Switches the active tab on the seller dashboard.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"tab": {Type: genai.TypeString, Enum: []string{"products", "orders", "analytics"}},
				},
				Required: []string{"tab"},
			},
		},
	}
}
