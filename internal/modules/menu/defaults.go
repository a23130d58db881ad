package menu

func page(path, label, icon, component string) Node {
	return Node{Key: path, Label: label, Icon: icon, Component: component, Path: path}
}

func group(key, label, icon string, children ...Node) Node {
	return Node{Key: key, Label: label, Icon: icon, Children: children}
}

// MainMenu returns the built-in main navigation.
func MainMenu() []Node {
	return []Node{
		page("/dashboard", "Dashboard", "dashboard", "Dashboard"),
		group("/market", "Market", "bar-chart",
			page("/market/overview", "Overview", "bar-chart", "MarketOverview"),
			page("/market/trends", "Trends", "line-chart", "MarketTrends"),
			page("/market/sectors", "Sectors", "fund", "MarketSectors"),
		),
		group("/stock-picker", "Stock Picker", "scan",
			page("/stock-picker/screening", "Screening", "tool", "StockScreening"),
			page("/stock-picker/analysis", "Deep Analysis", "stock", "StockAnalysis"),
			page("/stock-picker/recommendations", "Recommendations", "bulb", "StockRecommendations"),
		),
		group("/ai-monitor", "AI Monitor", "robot",
			page("/ai-monitor/realtime", "Realtime", "monitor", "AiMonitor"),
			page("/ai-monitor/alerts", "Smart Alerts", "safety", "AiMonitor"),
			page("/ai-monitor/patterns", "Pattern Recognition", "scan", "AiMonitor"),
		),
		group("/trading-strategy", "Trading Strategy", "tag",
			page("/trading-strategy/backtest", "Backtest", "line-chart", "PlaceholderPage"),
			page("/trading-strategy/signals", "Signals", "bulb", "PlaceholderPage"),
			page("/trading-strategy/portfolio", "Portfolio Management", "file-text", "PlaceholderPage"),
		),
		group("/watchlist", "Watchlist", "heart",
			page("/watchlist/stocks", "Stocks", "stock", "Watchlist"),
			page("/watchlist/portfolios", "Portfolios", "fund", "PlaceholderPage"),
			page("/watchlist/alerts", "Price Alerts", "safety", "PlaceholderPage"),
		),
		group("/message-center", "Message Center", "message",
			page("/message-center/notifications", "Notifications", "safety", "MessageCenter"),
			page("/message-center/alerts", "Alerts", "bulb", "MessageCenter"),
			page("/message-center/reports", "Reports", "file-text", "MessageCenter"),
		),
	}
}

// AdminMenu returns the administration entries.
func AdminMenu() []Node {
	return []Node{
		page("/settings", "System Settings", "setting", "SystemSettings"),
		page("/logs", "Logs", "file-text", "SystemLogs"),
	}
}

// DefaultMenu is the main menu followed by the admin entries.
func DefaultMenu() []Node {
	return append(MainMenu(), AdminMenu()...)
}

// DefaultTree builds the Tree for DefaultMenu.
func DefaultTree() (*Tree, error) {
	return NewTree(DefaultMenu()...)
}
