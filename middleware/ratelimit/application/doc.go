// Package application contém os casos de uso do rate limit:
//
//   - WindowService: contador de janela fixa no store chave-valor
//   - GuardService: decisão allow/deny de um token bucket em memória
//   - ConcurrencyService: acquire com timeout de vagas de concorrência
//
// Depende de domain e do contrato storage/kv; não conhece net/http.
package application
