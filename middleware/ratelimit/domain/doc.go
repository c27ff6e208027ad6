// Package domain define contratos e tipos de domínio do rate limit:
// regras de janela fixa, chaves de contador, decisões e estatísticas.
//
// Este pacote não depende de net/http nem do armazenamento concreto.
package domain
