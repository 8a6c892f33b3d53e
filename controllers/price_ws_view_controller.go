package controllers

import "net/http"

type PriceWsViewController struct {
}

func NewPriceWsViewController() *PriceWsViewController {
	return &PriceWsViewController{}
}

// ServePricePage serves the HTML page for the live price of the streamed symbol
func (vc *PriceWsViewController) ServePricePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/price" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(pricePage))
}

const pricePage = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Live Trade Price</title>
    <style>
        body { font-family: Arial, sans-serif; text-align: center; padding: 40px; background: #f5f5f5; }
        .symbol { font-size: 24px; font-weight: bold; color: #333; }
        .price { font-size: 48px; font-weight: bold; color: #007bff; margin: 20px 0; }
        .time { font-size: 12px; color: #666; }
        .status { font-size: 14px; margin-bottom: 20px; }
    </style>
</head>
<body>
    <div id="status" class="status">Connecting...</div>
    <div id="symbol" class="symbol">--</div>
    <div id="price" class="price">--</div>
    <div id="time" class="time">--</div>
    <script>
        const protocol = window.location.protocol === 'https:' ? 'wss:' : 'ws:';
        const ws = new WebSocket(protocol + '//' + window.location.host + '/ws/price');

        ws.onopen = () => { document.getElementById('status').textContent = 'Connected'; };
        ws.onclose = () => { document.getElementById('status').textContent = 'Disconnected'; };
        ws.onmessage = (event) => {
            const ticker = JSON.parse(event.data);
            document.getElementById('symbol').textContent = ticker.symbol;
            document.getElementById('price').textContent = ticker.price || '--';
            document.getElementById('time').textContent = ticker.tradeTime
                ? new Date(Number(ticker.tradeTime)).toISOString()
                : '--';
        };
    </script>
</body>
</html>`
