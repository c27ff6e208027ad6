// Package cache fornece um middleware net/http de cache de respostas sobre o
// store chave-valor.
//
// Antes do handler: procura a chave normalizada (path + query ordenada por nome).
// Hit => responde com o corpo guardado e "X-Cache: HIT", sem chamar o handler.
// Miss => "X-Cache: MISS", chama o handler e grava a resposta com
// ttl = max(60s, ttl da rota).
//
// Qualquer falha do store vira miss (leitura) ou resposta não cacheada (escrita).
package cache
